package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"karaparty/internal/links"
	"karaparty/internal/services"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the settings needed to add videos to one playlist.
type Config struct {
	PlaylistID     string
	AccessToken    string
	TokenFile      string
	BaseURL        string
	TimeoutSeconds int
	RetryAttempts  int
}

// YouTubeClient inserts videos through the YouTube Data API
// playlistItems.insert endpoint.
type YouTubeClient struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*YouTubeClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *YouTubeClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *YouTubeClient) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *YouTubeClient) {
		c.sleeper = sleeper
	}
}

// NewYouTubeClient constructs a client for cfg.
func NewYouTubeClient(cfg Config, opts ...Option) *YouTubeClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	c := &YouTubeClient{
		cfg: Config{
			PlaylistID:     strings.TrimSpace(cfg.PlaylistID),
			AccessToken:    strings.TrimSpace(cfg.AccessToken),
			TokenFile:      strings.TrimSpace(cfg.TokenFile),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
			RetryAttempts:  attempts,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: attempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	return c
}

type playlistItemRequest struct {
	Snippet playlistItemSnippet `json:"snippet"`
}

type playlistItemSnippet struct {
	PlaylistID string     `json:"playlistId"`
	ResourceID resourceID `json:"resourceId"`
}

type resourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("youtube api: http %d: %s", e.StatusCode, e.Message)
}

// Insert appends the video referenced by resource to the playlist.
func (c *YouTubeClient) Insert(ctx context.Context, resource string) error {
	videoID, ok := links.VideoID(resource)
	if !ok {
		return services.Wrap(services.ErrValidation, "playlist", "insert", fmt.Sprintf("no video id in %q", resource), nil)
	}
	if c.cfg.PlaylistID == "" {
		return services.Wrap(services.ErrConfiguration, "playlist", "insert", "playlist id not configured", nil)
	}

	attempts := c.retryMaxAttempts
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.insertOnce(ctx, videoID)
		if err == nil {
			return nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return services.Wrap(services.ErrTimeout, "playlist", "insert", "retry interrupted", err)
		}
	}
	return classify(lastErr, videoID)
}

func (c *YouTubeClient) insertOnce(ctx context.Context, videoID string) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	endpoint, err := url.Parse(c.cfg.BaseURL + "/playlistItems")
	if err != nil {
		return fmt.Errorf("youtube api: build url: %w", err)
	}
	endpoint.RawQuery = url.Values{"part": {"snippet"}}.Encode()

	body, err := json.Marshal(playlistItemRequest{Snippet: playlistItemSnippet{
		PlaylistID: c.cfg.PlaylistID,
		ResourceID: resourceID{Kind: "youtube#video", VideoID: videoID},
	}})
	if err != nil {
		return fmt.Errorf("youtube api: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("youtube api: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api: http error: %w", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		msg := strings.TrimSpace(string(payload))
		var apiErr apiErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return &httpStatusError{StatusCode: resp.StatusCode, Message: msg, RetryAfter: retryAfter}
	}
	return nil
}

// token prefers the token file so an external refresher can rotate
// credentials without restarting the daemon.
func (c *YouTubeClient) token() (string, error) {
	if c.cfg.TokenFile != "" {
		data, err := os.ReadFile(c.cfg.TokenFile)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "playlist", "token", "read token file", err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}
	if c.cfg.AccessToken != "" {
		return c.cfg.AccessToken, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "playlist", "token", "no access token configured", nil)
}

func classify(err error, videoID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrConfiguration) || errors.Is(err, services.ErrValidation) {
		return err
	}
	op := "insert " + videoID
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "playlist", op, "credentials rejected", err)
		case statusErr.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "playlist", op, "playlist or video not found", err)
		case statusErr.StatusCode == http.StatusBadRequest:
			return services.Wrap(services.ErrValidation, "playlist", op, "request rejected", err)
		case statusErr.StatusCode == http.StatusTooManyRequests, statusErr.StatusCode >= http.StatusInternalServerError:
			return services.Wrap(services.ErrTransient, "playlist", op, "retries exhausted", err)
		default:
			return services.Wrap(services.ErrExternalService, "playlist", op, "", err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return services.Wrap(services.ErrTimeout, "playlist", op, "", err)
	}
	return services.Wrap(services.ErrTransient, "playlist", op, "", err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *YouTubeClient) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if errors.Is(err, services.ErrConfiguration) {
		return 0, false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return min(statusErr.RetryAfter, c.retryMaxDelay), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	if isTimeout(err) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from the base delay per attempt and caps at the max.
func (c *YouTubeClient) backoffDelay(attempt int) time.Duration {
	if c.retryBaseDelay <= 0 {
		return 0
	}
	delay := c.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay >= c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	return min(delay, c.retryMaxDelay)
}

func (c *YouTubeClient) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
