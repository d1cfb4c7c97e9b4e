// Package queue holds the in-memory submission pipeline that sits between
// inbound song requests and the playlist.
//
// Two types cooperate:
//   - Manager keeps one FIFO per team and serves entries round-robin across
//     teams that still have committed work. It also owns the append-only set
//     of (team, resource) pairs that have already been released.
//   - Buffer stages add, delete and replace requests that have not been
//     committed yet. CommitAndRelease moves every staged entry into a Manager
//     and drains up to the configured dispatch count in one atomic step.
//
// Entries move Staged -> Committed -> Dispatched and never go back. Nothing in
// this package performs I/O; callers upload released entries after
// CommitAndRelease returns so a slow upload never holds a queue lock.
//
// State is process-local. Restarting the daemon starts from an empty queue and
// an empty dispatched set; the dispatch log is the durable record.
package queue
