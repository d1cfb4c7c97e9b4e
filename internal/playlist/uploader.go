package playlist

import (
	"context"

	"karaparty/internal/config"
)

// Uploader adds a released song to the shared playlist.
type Uploader interface {
	Insert(ctx context.Context, resource string) error
}

// Noop accepts every insert without side effects. It is used when uploads are
// disabled so the dispatch log remains the only consumer.
type Noop struct{}

func (Noop) Insert(context.Context, string) error { return nil }

// New returns the uploader configured in [youtube].
func New(cfg *config.Config, opts ...Option) Uploader {
	if cfg == nil || !cfg.YouTube.Enabled {
		return Noop{}
	}
	return NewYouTubeClient(Config{
		PlaylistID:     cfg.YouTube.PlaylistID,
		AccessToken:    cfg.YouTube.AccessToken,
		TokenFile:      cfg.YouTube.TokenFile,
		BaseURL:        cfg.YouTube.BaseURL,
		TimeoutSeconds: cfg.YouTube.TimeoutSeconds,
		RetryAttempts:  cfg.YouTube.RetryAttempts,
	}, opts...)
}
