// Package intake maps submission events (new message, deleted message, edited
// message) from a team channel onto the staging buffer.
//
// It is the boundary where free text becomes a canonical resource link and
// where buffer result reasons become user-facing warnings. Warning messages
// are the Spanish texts shown to participants.
package intake
