// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers translate HTTP concerns to service calls and
// map service errors to status codes without leaking internal detail.
package api
