package dispatchlog

import (
	"context"
	"fmt"
	"log/slog"

	"karaparty/internal/config"
)

// Open returns the dispatch log selected by dispatch.log_backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Log, error) {
	switch cfg.Dispatch.LogBackend {
	case config.LogBackendSQLite:
		return OpenSQLite(ctx, cfg.Dispatch.LogPath)
	case config.LogBackendJSON, "":
		return NewJSONFile(cfg.Dispatch.LogPath, logger), nil
	default:
		return nil, fmt.Errorf("dispatch log: unsupported backend %q", cfg.Dispatch.LogBackend)
	}
}
