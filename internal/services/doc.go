// Package services defines shared utilities consumed by the dispatch driver
// and the external integrations (playlist uploader, notifier, dispatch log).
//
// Key responsibilities:
//   - Context helpers that stamp dispatch cycle IDs, teams, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is, and ErrorHint to turn a marker into operator
//     guidance for logs.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across the daemon.
package services
