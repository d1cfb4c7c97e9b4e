package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"karaparty/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func youtubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/playlists" || r.URL.Query().Get("id") != "PL1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckYouTube(t *testing.T) {
	srv := youtubeServer(t)
	tests := []struct {
		name   string
		cfg    config.YouTube
		passed bool
	}{
		{"ok", config.YouTube{BaseURL: srv.URL, PlaylistID: "PL1", AccessToken: "good"}, true},
		{"bad token", config.YouTube{BaseURL: srv.URL, PlaylistID: "PL1", AccessToken: "bad"}, false},
		{"unknown playlist", config.YouTube{BaseURL: srv.URL, PlaylistID: "PL2", AccessToken: "good"}, false},
		{"missing token", config.YouTube{BaseURL: srv.URL, PlaylistID: "PL1"}, false},
		{"missing playlist", config.YouTube{BaseURL: srv.URL, AccessToken: "good"}, false},
		{"missing url", config.YouTube{PlaylistID: "PL1", AccessToken: "good"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckYouTube(context.Background(), tc.cfg)
			if result.Passed != tc.passed {
				t.Fatalf("passed = %v, want %v (%s)", result.Passed, tc.passed, result.Detail)
			}
		})
	}
}

func TestCheckYouTube_TokenFile(t *testing.T) {
	srv := youtubeServer(t)
	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("good\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	result := CheckYouTube(context.Background(), config.YouTube{BaseURL: srv.URL, PlaylistID: "PL1", AccessToken: "bad", TokenFile: tokenPath})
	if !result.Passed {
		t.Fatalf("expected token file to take precedence: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.DataDir, "logs")
	cfg.Dispatch.LogPath = filepath.Join(cfg.Paths.DataDir, "dispatched.json")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.YouTube.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected data + log directory checks, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesYouTubeWhenEnabled(t *testing.T) {
	srv := youtubeServer(t)
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = cfg.Paths.DataDir
	cfg.Dispatch.LogPath = filepath.Join(t.TempDir(), "missing", "dispatched.db")
	cfg.YouTube = config.YouTube{Enabled: true, BaseURL: srv.URL, PlaylistID: "PL1", AccessToken: "good"}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Dispatch log directory" {
		t.Fatalf("expected only the dispatch log directory to fail, got %+v", failed)
	}
}

func TestCheckYouTubeFromConfig_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.YouTube.Enabled = false
	if result := CheckYouTubeFromConfig(context.Background(), &cfg); !result.Passed {
		t.Fatalf("disabled uploader should pass, got %s", result.Detail)
	}
}
