// Package logging assembles structured slog loggers and formatting helpers used
// across karaparty.
//
// It owns the console and JSON handlers, level and output plumbing, a fan-out
// handler for per-run log files, and context helpers that tag log lines with
// dispatch cycle IDs, teams, and request correlation IDs. Log retention prunes
// old per-run files from the log directory.
package logging
