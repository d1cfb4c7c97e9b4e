package queue

import (
	"sync"
	"time"
)

// DefaultDispatchCount is the number of entries released per cycle unless
// configured otherwise.
const DefaultDispatchCount = 3

// Buffer stages submissions until the next dispatch cycle commits them.
//
// A single mutex serializes the staging operations and CommitAndRelease.
// CommitAndRelease also holds the Manager lock for its whole
// enqueue/drain/clear sequence, always taken after the Buffer lock.
type Buffer struct {
	mu            sync.Mutex
	pending       []Key
	dispatchCount int
	now           func() time.Time
}

// BufferOption customizes a Buffer.
type BufferOption func(*Buffer)

// WithDispatchCount sets the initial dispatch count. Non-positive values are
// ignored.
func WithDispatchCount(n int) BufferOption {
	return func(b *Buffer) {
		if n > 0 {
			b.dispatchCount = n
		}
	}
}

// WithBufferClock overrides the commit timestamp source.
func WithBufferClock(now func() time.Time) BufferOption {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuffer returns an empty staging buffer.
func NewBuffer(opts ...BufferOption) *Buffer {
	b := &Buffer{
		dispatchCount: DefaultDispatchCount,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetDispatchCount changes how many entries each cycle releases. Values <= 0
// leave the current setting untouched; the return value reports whether the
// new value was applied.
func (b *Buffer) SetDispatchCount(n int) bool {
	if n <= 0 {
		return false
	}
	b.mu.Lock()
	b.dispatchCount = n
	b.mu.Unlock()
	return true
}

// DispatchCount returns the effective per-cycle release limit.
func (b *Buffer) DispatchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dispatchCount
}

// AddSong stages resource for team.
func (b *Buffer) AddSong(team, resource string) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(team, resource) >= 0 {
		return rejected(ReasonDuplicateStaged)
	}
	b.pending = append(b.pending, Key{Team: team, Resource: resource})
	return accepted()
}

// DeleteSong removes a staged entry. Committed or unknown entries are
// reported as not found.
func (b *Buffer) DeleteSong(team, resource string) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexLocked(team, resource)
	if idx < 0 {
		return rejected(ReasonStagedEntryNotFound)
	}
	b.pending = append(b.pending[:idx], b.pending[idx+1:]...)
	return accepted()
}

// ReplaceSong swaps the resource of a staged entry in place, keeping its
// position. Replacing onto a pair that is already staged is rejected as a
// duplicate so the buffer never holds the same pair twice.
func (b *Buffer) ReplaceSong(team, oldResource, newResource string) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexLocked(team, oldResource)
	if idx < 0 {
		return rejected(ReasonStagedEntryNotFound)
	}
	if oldResource == newResource {
		return accepted()
	}
	if b.indexLocked(team, newResource) >= 0 {
		return rejected(ReasonDuplicateStaged)
	}
	b.pending[idx].Resource = newResource
	return accepted()
}

// CommitAndRelease enqueues every staged entry into q, releases up to the
// dispatch count in round-robin order, marks each released pair dispatched,
// and clears the buffer. The released entries are returned in release order.
func (b *Buffer) CommitAndRelease(q *Manager) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	q.mu.Lock()
	defer q.mu.Unlock()

	committedAt := b.now()
	for _, key := range b.pending {
		q.enqueueLocked(key.Resource, key.Team, committedAt)
	}

	released := make([]Entry, 0, b.dispatchCount)
	for range b.dispatchCount {
		entry, ok := q.dequeueLocked()
		if !ok {
			break
		}
		q.markLocked(entry.Resource, entry.Team)
		released = append(released, entry)
	}

	b.pending = b.pending[:0]
	return released
}

// Staged returns a snapshot of the staged pairs in arrival order.
func (b *Buffer) Staged() []Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Key(nil), b.pending...)
}

// IsStaged reports whether the pair is waiting in the buffer.
func (b *Buffer) IsStaged(team, resource string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexLocked(team, resource) >= 0
}

// Len returns the number of staged entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Buffer) indexLocked(team, resource string) int {
	for i, key := range b.pending {
		if key.Team == team && key.Resource == resource {
			return i
		}
	}
	return -1
}
