package preflight

import (
	"context"

	"karaparty/internal/config"
)

// CheckYouTubeFromConfig evaluates uploader status for the check command.
// Disabled uploads count as passing.
func CheckYouTubeFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "YouTube playlist"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.YouTube.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled (dispatch log only)"}
	}
	return CheckYouTube(ctx, cfg.YouTube)
}
