// Package main hosts the karaparty CLI entrypoint and command graph.
//
// Every command except daemon and config talks to a running daemon over its
// HTTP API, so submissions typed here go through the same intake path as
// chat events.
package main
