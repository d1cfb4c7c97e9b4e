// Package notifications delivers dispatch events to the operator via ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Each event has a per-event toggle in the
// [notifications] config section; disabled events are dropped before any HTTP
// call is made.
package notifications
