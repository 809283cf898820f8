// Package domain contains the core business entities of the task tracker:
// tasks with their deadline, recurrence and reminder state, browser push
// subscriptions, and the wire shapes exchanged with the reminder queue and the
// push service. It has no dependency on storage or transport.
package domain
