package daemon_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"karaparty/internal/api"
	"karaparty/internal/config"
	"karaparty/internal/daemon"
	"karaparty/internal/logging"
	"karaparty/internal/testsupport"
)

const (
	linkA = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	linkB = "https://www.youtube.com/watch?v=9bZkp7q19f0"
)

type recordingUploader struct {
	mu       sync.Mutex
	inserted []string
}

func (u *recordingUploader) Insert(_ context.Context, resource string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inserted = append(u.inserted, resource)
	return nil
}

func (u *recordingUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.inserted)
}

func startDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *recordingUploader) {
	t.Helper()
	uploader := &recordingUploader{}
	d, err := daemon.New(context.Background(), cfg, logging.NewNop(), daemon.WithUploader(uploader))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return d, uploader
}

func clientFor(t *testing.T, d *daemon.Daemon, token string) *api.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.APIBind = d.Status(context.Background()).APIAddress
	cfg.Paths.APIToken = token
	client, err := api.NewClient(&cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := startDaemon(t, cfg)
	ctx := context.Background()

	status := d.Status(ctx)
	if !status.Running || !status.Dispatcher.Running {
		t.Fatalf("expected daemon and dispatcher running: %+v", status)
	}
	if status.APIAddress == "" {
		t.Fatal("expected api address")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running || status.Dispatcher.Running {
		t.Fatal("expected daemon to be stopped")
	}
	d.Stop()
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	startDaemon(t, cfg)

	second, err := daemon.New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	defer second.Close()
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected lock contention error")
	}
}

func TestDaemonSubmissionFlowOverHTTP(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMonitoredTeams("Rojo", "Azul"), testsupport.WithDispatch(1, 3600))
	d, uploader := startDaemon(t, cfg)
	client := clientFor(t, d, "")
	ctx := context.Background()

	out, err := client.Submit(ctx, " ROJO ", "esta: "+linkA)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Accepted || out.Team != "rojo" || out.Resource != linkA {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out, _ := client.Submit(ctx, "verde", linkB); out.Warning != "unwanted_channel" {
		t.Fatalf("expected unwanted channel warning, got %+v", out)
	}
	if out, _ := client.Submit(ctx, "azul", "sin enlace"); out.Warning != "invalid_message" {
		t.Fatalf("expected invalid message warning, got %+v", out)
	}
	if _, err := client.Submit(ctx, "azul", linkB); err != nil {
		t.Fatalf("Submit azul: %v", err)
	}

	pending, err := client.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending.Staged) != 2 || len(pending.Queued) != 0 {
		t.Fatalf("unexpected pending: %+v", pending)
	}

	report, err := client.Dispatch(ctx)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(report.Released) != 1 || report.Released[0].Resource != linkA {
		t.Fatalf("unexpected release: %+v", report.Released)
	}

	pending, _ = client.Pending(ctx)
	if len(pending.Staged) != 0 || len(pending.Queued) != 1 || pending.Queued[0].Team != "azul" {
		t.Fatalf("expected azul queued after first cycle: %+v", pending)
	}
	if out, _ := client.Edit(ctx, "azul", linkB, linkA); out.Warning != "edit_queued_song" {
		t.Fatalf("expected edit of queued song to be refused, got %+v", out)
	}
	if out, _ := client.Submit(ctx, "rojo", linkA); out.Warning != "repeated_song" {
		t.Fatalf("expected repeated song warning, got %+v", out)
	}

	songs, err := client.Dispatched(ctx)
	if err != nil {
		t.Fatalf("Dispatched: %v", err)
	}
	if len(songs) != 1 || songs[0].Team != "rojo" || songs[0].Link != linkA {
		t.Fatalf("unexpected dispatch log: %+v", songs)
	}
	if uploader.count() != 1 {
		t.Fatalf("expected one upload, got %d", uploader.count())
	}

	resp, err := http.Get("http://" + d.Status(ctx).APIAddress + "/songs")
	if err != nil {
		t.Fatalf("GET /songs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /songs status %d", resp.StatusCode)
	}
}

func TestDaemonSettings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := startDaemon(t, cfg)
	client := clientFor(t, d, "")
	ctx := context.Background()

	count, interval := 5, 120
	settings, err := client.UpdateSettings(ctx, api.SettingsRequest{DispatchCount: &count, IntervalSeconds: &interval})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if settings.DispatchCount != 5 || settings.IntervalSeconds != 120 {
		t.Fatalf("unexpected settings: %+v", settings)
	}

	zero := 0
	_, err = client.UpdateSettings(ctx, api.SettingsRequest{DispatchCount: &zero})
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero count, got %v", err)
	}
	if got, _ := d.Settings(); got != 5 {
		t.Fatalf("rejected update changed count to %d", got)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Dispatcher.IntervalSeconds != 120 || status.Dispatcher.DispatchCount != 5 {
		t.Fatalf("status does not reflect settings: %+v", status.Dispatcher)
	}
}

func TestDaemonRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("s3cret"))
	d, _ := startDaemon(t, cfg)
	ctx := context.Background()

	_, err := clientFor(t, d, "wrong").Status(ctx)
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if _, err := clientFor(t, d, "s3cret").Status(ctx); err != nil {
		t.Fatalf("Status with token: %v", err)
	}

	resp, err := http.Get("http://" + d.Status(ctx).APIAddress + "/songs")
	if err != nil {
		t.Fatalf("GET /songs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/songs must stay public, got %d", resp.StatusCode)
	}
}

func TestDaemonSQLiteDispatchLog(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSQLiteDispatchLog())
	d, _ := startDaemon(t, cfg)
	ctx := context.Background()

	if out := d.Submit(ctx, "rojo", linkA); !out.Accepted {
		t.Fatalf("Submit: %+v", out)
	}
	if _, err := d.Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	records, err := d.Dispatched(ctx)
	if err != nil {
		t.Fatalf("Dispatched: %v", err)
	}
	if len(records) != 1 || records[0].Team != "rojo" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
