package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"karaparty/internal/config"
)

const userAgent = "Karaparty-Go/0.1.0"

// Event identifies a notification the daemon can emit.
type Event string

const (
	EventSongDispatched    Event = "song_dispatched"
	EventUploadFailed      Event = "upload_failed"
	EventCycleCompleted    Event = "cycle_completed"
	EventSubmissionWarning Event = "submission_warning"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries event-specific values. Keys are documented per event in
// build.
type Payload map[string]any

// Service publishes events to the operator channel.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		toggles:  cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	toggles  config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.enabled(event) {
		return nil
	}
	msg, ok := build(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventSongDispatched:
		return n.toggles.Dispatched
	case EventCycleCompleted:
		return n.toggles.CycleSummary
	case EventUploadFailed, EventError:
		return n.toggles.UploadErrors
	case EventSubmissionWarning:
		return n.toggles.Warnings
	case EventTest:
		return true
	default:
		return false
	}
}

func build(event Event, payload Payload) (message, bool) {
	switch event {
	case EventSongDispatched:
		return message{
			title: "Karaparty - Song Dispatched",
			body:  fmt.Sprintf("🎤 %s: %s", payloadString(payload, "team"), payloadString(payload, "link")),
			tags:  []string{"karaparty", "dispatch"},
		}, true
	case EventUploadFailed:
		return message{
			title:    "Karaparty - Upload Failed",
			body:     fmt.Sprintf("❌ Could not add %s (%s) to the playlist: %s", payloadString(payload, "link"), payloadString(payload, "team"), payloadString(payload, "error")),
			tags:     []string{"karaparty", "playlist", "error"},
			priority: "high",
		}, true
	case EventCycleCompleted:
		released := payloadInt(payload, "released")
		failed := payloadInt(payload, "failed")
		body := fmt.Sprintf("Dispatch cycle released %d songs", released)
		if failed > 0 {
			body = fmt.Sprintf("Dispatch cycle released %d songs, %d uploads failed", released, failed)
		}
		return message{
			title: "Karaparty - Cycle Complete",
			body:  body,
			tags:  []string{"karaparty", "cycle"},
		}, true
	case EventSubmissionWarning:
		return message{
			title: "Karaparty - Submission Rejected",
			body:  fmt.Sprintf("⚠️ %s: %s", payloadString(payload, "team"), payloadString(payload, "message")),
			tags:  []string{"karaparty", "warning", payloadString(payload, "warning")},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("❌ Error")
		if label := payloadString(payload, "context"); label != "" {
			b.WriteString(" with ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if text := payloadString(payload, "error"); text != "" {
			b.WriteString(text)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "Karaparty - Error",
			body:     b.String(),
			tags:     []string{"karaparty", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Karaparty - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"karaparty", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	tags := msg.tags[:0:0]
	for _, tag := range msg.tags {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 0 {
		req.Header.Set("Tags", strings.Join(tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
