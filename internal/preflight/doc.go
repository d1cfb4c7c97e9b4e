// Package preflight provides readiness checks for the filesystem paths and
// the playlist service karaparty depends on.
//
// The daemon runs RunAll at startup and logs every failed check; the CLI
// check command uses CheckYouTubeFromConfig to display uploader health.
// Each check is gated by its config toggle.
package preflight
