package daemon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"karaparty/internal/logging"
	"karaparty/internal/testsupport"
)

func TestStopDrainsStatusRequestsWithoutTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := d.Status(context.Background()).APIAddress

	// Hold the daemon mutex so the status handler parks inside Status.
	d.mu.Lock()
	requestDone := make(chan struct{})
	go func() {
		defer close(requestDone)
		if resp, err := http.Get("http://" + addr + "/api/status"); err == nil {
			resp.Body.Close()
		}
	}()
	time.Sleep(100 * time.Millisecond)

	stopped := make(chan time.Duration, 1)
	go func() {
		start := time.Now()
		d.Stop()
		stopped <- time.Since(start)
	}()
	time.Sleep(50 * time.Millisecond)
	d.mu.Unlock()

	select {
	case elapsed := <-stopped:
		if elapsed > 3*time.Second {
			t.Fatalf("Stop took %s while a status request was in flight", elapsed)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}
	select {
	case <-requestDone:
	case <-time.After(5 * time.Second):
		t.Fatal("status request did not complete")
	}
	if d.Status(context.Background()).Running {
		t.Fatal("expected daemon stopped")
	}
}
