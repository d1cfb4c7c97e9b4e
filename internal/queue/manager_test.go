package queue_test

import (
	"testing"
	"time"

	"karaparty/internal/queue"
)

func TestDequeueNextRoundRobinAcrossTeams(t *testing.T) {
	m := queue.NewManager()
	ts := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	m.Enqueue("a1", "alpha", ts)
	m.Enqueue("a2", "alpha", ts)
	m.Enqueue("a3", "alpha", ts)
	m.Enqueue("b1", "bravo", ts)
	m.Enqueue("c1", "charlie", ts)
	m.Enqueue("c2", "charlie", ts)

	want := []string{"a1", "b1", "c1", "a2", "c2", "a3"}
	for i, resource := range want {
		entry, ok := m.DequeueNext()
		if !ok {
			t.Fatalf("dequeue %d: expected entry %q, queue exhausted", i, resource)
		}
		if entry.Resource != resource {
			t.Fatalf("dequeue %d: got %q want %q", i, entry.Resource, resource)
		}
	}
	if _, ok := m.DequeueNext(); ok {
		t.Fatal("expected queue to be exhausted")
	}
	if !m.IsEmpty() {
		t.Fatal("expected IsEmpty after draining")
	}
}

func TestDequeueNextEmptyManager(t *testing.T) {
	m := queue.NewManager()
	if !m.IsEmpty() {
		t.Fatal("new manager should be empty")
	}
	if entry, ok := m.DequeueNext(); ok {
		t.Fatalf("expected no entry, got %+v", entry)
	}
}

func TestEnqueueUsesClockForZeroTimestampAndStoresUTC(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	m := queue.NewManager(queue.WithClock(func() time.Time { return fixed }))
	m.Enqueue("song", "alpha", time.Time{})

	entry, ok := m.DequeueNext()
	if !ok {
		t.Fatal("expected entry")
	}
	if !entry.Timestamp.Equal(fixed) {
		t.Fatalf("timestamp = %v, want %v", entry.Timestamp, fixed)
	}
	if entry.Timestamp.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", entry.Timestamp.Location())
	}
	if entry.Team != "alpha" {
		t.Fatalf("team = %q", entry.Team)
	}
}

func TestDrainedTeamKeepsSlotUntilSkipped(t *testing.T) {
	m := queue.NewManager()
	m.Enqueue("a1", "alpha", time.Time{})
	m.Enqueue("b1", "bravo", time.Time{})
	m.Enqueue("b2", "bravo", time.Time{})

	for _, want := range []string{"a1", "b1"} {
		entry, _ := m.DequeueNext()
		if entry.Resource != want {
			t.Fatalf("got %q want %q", entry.Resource, want)
		}
	}

	// alpha is drained but still at the front of the rotation, so a new
	// entry for it is served before bravo's second entry.
	m.Enqueue("a2", "alpha", time.Time{})
	for _, want := range []string{"a2", "b2"} {
		entry, ok := m.DequeueNext()
		if !ok || entry.Resource != want {
			t.Fatalf("got %q (ok=%v) want %q", entry.Resource, ok, want)
		}
	}
}

func TestSkippedTeamRejoinsAtBack(t *testing.T) {
	m := queue.NewManager()
	m.Enqueue("a1", "alpha", time.Time{})
	m.Enqueue("b1", "bravo", time.Time{})
	m.Enqueue("b2", "bravo", time.Time{})
	m.Enqueue("b3", "bravo", time.Time{})

	// a1, b1, then alpha is found empty and dropped before b2 is served.
	for _, want := range []string{"a1", "b1", "b2"} {
		entry, _ := m.DequeueNext()
		if entry.Resource != want {
			t.Fatalf("got %q want %q", entry.Resource, want)
		}
	}

	m.Enqueue("a2", "alpha", time.Time{})
	for _, want := range []string{"b3", "a2"} {
		entry, ok := m.DequeueNext()
		if !ok || entry.Resource != want {
			t.Fatalf("got %q (ok=%v) want %q", entry.Resource, ok, want)
		}
	}
}

func TestMarkDispatchedIsMonotonicAndIdempotent(t *testing.T) {
	m := queue.NewManager()
	if m.IsDispatched("song", "alpha") {
		t.Fatal("unexpected dispatched state before marking")
	}
	m.MarkDispatched("song", "alpha")
	m.MarkDispatched("song", "alpha")
	if !m.IsDispatched("song", "alpha") {
		t.Fatal("expected pair to be dispatched")
	}
	if m.IsDispatched("song", "bravo") {
		t.Fatal("dispatch state must be scoped by team")
	}

	m.Enqueue("song", "alpha", time.Time{})
	m.DequeueNext()
	m.Enqueue("other", "bravo", time.Time{})
	if !m.IsDispatched("song", "alpha") {
		t.Fatal("dispatched state must survive later operations")
	}
	if got := m.Stats().Dispatched; got != 1 {
		t.Fatalf("dispatched count = %d, want 1", got)
	}
}

func TestPendingPreviewsReleaseOrderWithoutMutating(t *testing.T) {
	m := queue.NewManager()
	m.Enqueue("a1", "alpha", time.Time{})
	m.Enqueue("a2", "alpha", time.Time{})
	m.Enqueue("b1", "bravo", time.Time{})

	preview := m.Pending()
	got := make([]string, 0, len(preview))
	for _, entry := range preview {
		got = append(got, entry.Resource)
	}
	want := []string{"a1", "b1", "a2"}
	if len(got) != len(want) {
		t.Fatalf("pending = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pending = %v, want %v", got, want)
		}
	}

	for _, resource := range want {
		entry, ok := m.DequeueNext()
		if !ok || entry.Resource != resource {
			t.Fatalf("dequeue got %q want %q", entry.Resource, resource)
		}
	}
}

func TestIsQueuedTracksCommittedEntries(t *testing.T) {
	m := queue.NewManager()
	m.Enqueue("a1", "alpha", time.Time{})
	if !m.IsQueued("a1", "alpha") {
		t.Fatal("expected committed entry to be queued")
	}
	m.DequeueNext()
	if m.IsQueued("a1", "alpha") {
		t.Fatal("released entry must not be reported as queued")
	}
}

func TestStatsCountsNonEmptyTeams(t *testing.T) {
	m := queue.NewManager()
	m.Enqueue("a1", "alpha", time.Time{})
	m.Enqueue("b1", "bravo", time.Time{})
	m.Enqueue("b2", "bravo", time.Time{})
	m.DequeueNext()

	stats := m.Stats()
	if stats.Teams != 1 || stats.Queued != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
