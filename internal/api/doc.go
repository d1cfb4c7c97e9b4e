// Package api defines the wire-format types, converters and client for the
// daemon HTTP API. It translates internal queue, intake and dispatcher models
// into transport-friendly DTOs so the CLI and other consumers never import
// daemon internals.
//
// DTOs use camelCase JSON tags and RFC3339 timestamps with milliseconds. The
// exception is DispatchedSong, which keeps the {team, link, timestamp} shape
// and minute-precision layout of the dispatch log file that existing
// playlist consumers read.
package api
