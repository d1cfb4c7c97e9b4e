// Package daemonctl starts, stops, and restarts a background karaparty
// daemon, using the HTTP API to observe readiness and the PID file to signal
// the process.
package daemonctl
