// Package logs reads the daemon's run log for `karaparty logs`: the trailing
// N lines, then, in follow mode, every complete line appended afterwards.
package logs
