// Package service contains the application use cases: the task lifecycle
// engine, the reminder scheduler, reminder delivery and push subscription
// management. Services orchestrate the stores in internal/store and the
// outbound transports behind small interfaces, and never depend on a
// concrete infrastructure implementation.
//
// Side effects against the delayed-message queue are advisory. The task row
// is always the source of truth for whether a reminder should exist, so a
// scheduling failure is logged and absorbed rather than failing the mutation
// that triggered it.
package service
