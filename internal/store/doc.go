// Package store defines interfaces for task and push subscription persistence.
// The interfaces keep the lifecycle engine independent of the concrete row
// store; the Postgres implementations live in internal/platform/postgres.
package store
