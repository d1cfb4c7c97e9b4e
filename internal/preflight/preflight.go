package preflight

import (
	"context"
	"path/filepath"

	"karaparty/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Data directory", cfg.Paths.DataDir)}

	if cfg.Paths.LogDir != "" && cfg.Paths.LogDir != cfg.Paths.DataDir {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if dir := filepath.Dir(cfg.Dispatch.LogPath); cfg.Dispatch.LogPath != "" && dir != cfg.Paths.DataDir && dir != cfg.Paths.LogDir {
		results = append(results, CheckDirectoryAccess("Dispatch log directory", dir))
	}

	if cfg.YouTube.Enabled {
		results = append(results, CheckYouTube(ctx, cfg.YouTube))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
