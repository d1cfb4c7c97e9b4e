package api

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
	"strings"
	"time"

	"github.com/google/uuid"

	"karaparty/internal/config"
)

// RequestIDHeader carries the correlation ID for a request.
const RequestIDHeader = "X-Request-ID"

// ErrUnavailable is returned when the daemon cannot be reached.
var ErrUnavailable = errors.New("karaparty daemon is not reachable")

// StatusError is a non-2xx response from the daemon.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// NewClient builds a client for the API bind address in cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("paths.api_bind is not configured")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse api bind: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: 15 * time.Second},
		token: strings.TrimSpace(cfg.Paths.APIToken),
	}, nil
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var out DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// Submit stages the link contained in text for team.
func (c *Client) Submit(ctx context.Context, team, text string) (Outcome, error) {
	var out Outcome
	err := c.do(ctx, http.MethodPost, "/api/submissions", SubmissionRequest{Team: team, Text: text}, &out)
	return out, err
}

// Delete withdraws the staged link contained in text.
func (c *Client) Delete(ctx context.Context, team, text string) (Outcome, error) {
	var out Outcome
	err := c.do(ctx, http.MethodPost, "/api/submissions/delete", SubmissionRequest{Team: team, Text: text}, &out)
	return out, err
}

// Edit replaces the staged link in before with the one in after.
func (c *Client) Edit(ctx context.Context, team, before, after string) (Outcome, error) {
	var out Outcome
	err := c.do(ctx, http.MethodPost, "/api/submissions/edit", EditRequest{Team: team, Before: before, After: after}, &out)
	return out, err
}

// Pending lists staged and queued entries.
func (c *Client) Pending(ctx context.Context) (PendingResponse, error) {
	var out PendingResponse
	err := c.do(ctx, http.MethodGet, "/api/pending", nil, &out)
	return out, err
}

// Dispatch forces an immediate dispatch cycle.
func (c *Client) Dispatch(ctx context.Context) (CycleReport, error) {
	var out CycleReport
	err := c.do(ctx, http.MethodPost, "/api/dispatch", nil, &out)
	return out, err
}

// Dispatched returns the dispatch log.
func (c *Client) Dispatched(ctx context.Context) ([]DispatchedSong, error) {
	var out DispatchedResponse
	if err := c.do(ctx, http.MethodGet, "/api/dispatched", nil, &out); err != nil {
		return nil, err
	}
	return out.Songs, nil
}

// UpdateSettings changes dispatch settings and returns the effective values.
func (c *Client) UpdateSettings(ctx context.Context, req SettingsRequest) (SettingsResponse, error) {
	var out SettingsResponse
	err := c.do(ctx, http.MethodPut, "/api/settings", req, &out)
	return out, err
}

// TestNotification asks the daemon to publish a test notification.
func (c *Client) TestNotification(ctx context.Context) (NotificationResponse, error) {
	var out NotificationResponse
	err := c.do(ctx, http.MethodPost, "/api/notifications/test", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		if json.Unmarshal(data, &payload) != nil || payload.Error == "" {
			payload.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isConnectionError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
