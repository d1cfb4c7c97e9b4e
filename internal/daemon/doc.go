// Package daemon coordinates the long-running karaparty process.
//
// It wires configuration, the fairness queue, the staging buffer, the intake
// handler, the dispatcher, and the dispatch log into a single lifecycle with
// flock-based locking to prevent multiple instances. The HTTP API served here
// is both the inbound transport for chat events and the admin surface used
// by the CLI.
//
// Keep orchestration logic here: queue semantics live in internal/queue and
// message rules in internal/intake, while the daemon focuses on startup,
// shutdown, and routing.
package daemon
