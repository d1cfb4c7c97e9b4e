package playlist_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"karaparty/internal/config"
	"karaparty/internal/playlist"
	"karaparty/internal/services"
)

const rickroll = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newClient(t *testing.T, server *httptest.Server, cfg playlist.Config, opts ...playlist.Option) *playlist.YouTubeClient {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = server.URL
	}
	if cfg.PlaylistID == "" {
		cfg.PlaylistID = "PL123"
	}
	if cfg.AccessToken == "" && cfg.TokenFile == "" {
		cfg.AccessToken = "secret"
	}
	opts = append([]playlist.Option{
		playlist.WithHTTPClient(server.Client()),
		playlist.WithSleeper(func(time.Duration) {}),
	}, opts...)
	return playlist.NewYouTubeClient(cfg, opts...)
}

func TestInsertSendsPlaylistItem(t *testing.T) {
	var gotAuth, gotPart, gotPath string
	var body struct {
		Snippet struct {
			PlaylistID string `json:"playlistId"`
			ResourceID struct {
				Kind    string `json:"kind"`
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPart = r.URL.Query().Get("part")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"item-1"}`))
	}))
	defer server.Close()

	client := newClient(t, server, playlist.Config{})
	if err := client.Insert(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotPath != "/playlistItems" || gotPart != "snippet" {
		t.Fatalf("unexpected request %s part=%s", gotPath, gotPart)
	}
	if body.Snippet.PlaylistID != "PL123" || body.Snippet.ResourceID.VideoID != "dQw4w9WgXcQ" || body.Snippet.ResourceID.Kind != "youtube#video" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestInsertRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			http.Error(w, `{"error":{"code":503,"message":"backend busy"}}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var delays []time.Duration
	client := newClient(t, server, playlist.Config{RetryAttempts: 3},
		playlist.WithSleeper(func(d time.Duration) { delays = append(delays, d) }))
	if err := client.Insert(context.Background(), rickroll); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if len(delays) != 2 || delays[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delays, got %v", delays)
	}
}

func TestInsertExhaustedRetriesIsTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(t, server, playlist.Config{RetryAttempts: 2}, playlist.WithRetryBackoff(time.Millisecond, 2*time.Millisecond))
	err := client.Insert(context.Background(), rickroll)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestInsertClassifiesClientErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, services.ErrValidation},
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusForbidden, services.ErrConfiguration},
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusConflict, services.ErrExternalService},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			err := newClient(t, server, playlist.Config{}).Insert(context.Background(), rickroll)
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
			}
			if calls.Load() != 1 {
				t.Fatalf("status %d should not be retried, got %d calls", tc.status, calls.Load())
			}
		})
	}
}

func TestInsertRejectsLinkWithoutVideoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer server.Close()

	err := newClient(t, server, playlist.Config{}).Insert(context.Background(), "https://youtu.be/short")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInsertReadsTokenFileEachCall(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("first\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
	}))
	defer server.Close()

	client := newClient(t, server, playlist.Config{TokenFile: tokenPath})
	if err := client.Insert(context.Background(), rickroll); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := os.WriteFile(tokenPath, []byte("second"), 0o600); err != nil {
		t.Fatalf("rotate token: %v", err)
	}
	if err := client.Insert(context.Background(), rickroll); err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "Bearer first" || tokens[1] != "Bearer second" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
}

func TestInsertMissingTokenIsConfigurationError(t *testing.T) {
	client := playlist.NewYouTubeClient(playlist.Config{PlaylistID: "PL", TokenFile: filepath.Join(t.TempDir(), "missing")})
	err := client.Insert(context.Background(), rickroll)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewSelectsUploader(t *testing.T) {
	cfg := config.Default()
	if _, ok := playlist.New(&cfg).(playlist.Noop); !ok {
		t.Fatal("expected Noop when uploads are disabled")
	}
	cfg.YouTube.Enabled = true
	cfg.YouTube.PlaylistID = "PL"
	cfg.YouTube.AccessToken = "tok"
	if _, ok := playlist.New(&cfg).(*playlist.YouTubeClient); !ok {
		t.Fatal("expected YouTube client when uploads are enabled")
	}
}
