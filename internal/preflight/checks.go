package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"karaparty/internal/config"
)

const youtubeCheckTimeout = 5 * time.Second

// CheckYouTube verifies that the playlist exists and the token is accepted.
// It lists the playlist by ID, which costs a single quota unit.
func CheckYouTube(ctx context.Context, cfg config.YouTube) Result {
	const name = "YouTube playlist"

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	playlistID := strings.TrimSpace(cfg.PlaylistID)
	if playlistID == "" {
		return Result{Name: name, Detail: "missing playlist id"}
	}
	token, err := resolveToken(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, youtubeCheckTimeout)
	defer cancel()

	query := url.Values{"part": {"id"}, "id": {playlistID}}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/playlists?"+query.Encode(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: youtubeCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", playlistID)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (token rejected)"}
	case http.StatusNotFound:
		return Result{Name: name, Detail: fmt.Sprintf("playlist %s not found", playlistID)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

func resolveToken(cfg config.YouTube) (string, error) {
	if path := strings.TrimSpace(cfg.TokenFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("token file unreadable (%v)", err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}
	if token := strings.TrimSpace(cfg.AccessToken); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("missing access token")
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
