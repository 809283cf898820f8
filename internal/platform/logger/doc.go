// Package logger provides structured logging for the service.
//
// It configures a log/slog JSON handler from the server configuration and
// carries request-scoped loggers (tagged with a trace id) through context.
package logger
