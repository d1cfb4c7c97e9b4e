// Package playlist pushes released songs to a YouTube playlist.
//
// YouTubeClient calls playlistItems.insert with a bearer token, retrying
// 408/429/5xx responses and network timeouts with capped exponential backoff
// (honouring Retry-After). Final errors carry services markers so the
// dispatcher can log an actionable hint. Uploads are at-least-once: a failed
// insert is reported, never retried on a later cycle.
package playlist
