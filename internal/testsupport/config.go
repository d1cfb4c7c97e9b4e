package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"karaparty/internal/config"
	"karaparty/internal/links"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Uploads and notifications are disabled and the API binds to an ephemeral
// port. Directories are created so the result passes preflight.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "data", "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Dispatch.LogPath = filepath.Join(base, "data", "dispatched.json")
	cfgVal.YouTube.Enabled = false
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSQLiteDispatchLog switches the dispatch log to the SQLite backend.
func WithSQLiteDispatchLog() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatch.LogBackend = config.LogBackendSQLite
		b.cfg.Dispatch.LogPath = filepath.Join(b.baseDir, "data", "dispatched.db")
	}
}

// WithMonitoredTeams restricts intake to the given teams.
func WithMonitoredTeams(teams ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Teams.Monitored = b.cfg.Teams.Monitored[:0]
		for _, team := range teams {
			b.cfg.Teams.Monitored = append(b.cfg.Teams.Monitored, links.NormalizeTeam(team))
		}
	}
}

// WithAPIToken requires bearer authentication on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithDispatch overrides the dispatch count and interval.
func WithDispatch(count, intervalSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatch.Count = count
		b.cfg.Dispatch.IntervalSeconds = intervalSeconds
	}
}

// WithYouTube enables uploads against baseURL, typically an httptest server.
func WithYouTube(baseURL, playlistID, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.Enabled = true
		b.cfg.YouTube.BaseURL = baseURL
		b.cfg.YouTube.PlaylistID = playlistID
		b.cfg.YouTube.AccessToken = token
		b.cfg.YouTube.RetryAttempts = 1
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WriteConfigFile marshals cfg next to its data directory and returns the
// path, for commands that load configuration from disk.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	WriteFile(t, path, string(data))
	return path
}
