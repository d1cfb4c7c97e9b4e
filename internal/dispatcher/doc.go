// Package dispatcher drives the periodic dispatch cycle.
//
// Each tick the Driver commits the staging buffer into the fairness queue,
// releases up to the configured number of songs, inserts them into the
// playlist, and appends them to the dispatch log. Cycles never overlap, and
// stopping the driver waits for an in-flight cycle instead of cancelling it.
// The interval and dispatch count can be changed while the loop runs.
package dispatcher
