package queue

import (
	"sync"
	"time"
)

// Manager is the fairness queue: one FIFO per team, served round-robin in the
// order teams first received committed work.
type Manager struct {
	mu sync.Mutex

	queues     map[string][]Entry
	order      []string
	dispatched map[Key]struct{}

	now func() time.Time
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source used when Enqueue receives a zero
// timestamp.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager returns an empty fairness queue.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		queues:     make(map[string][]Entry),
		dispatched: make(map[Key]struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue appends resource to team's queue. A zero timestamp means now.
func (m *Manager) Enqueue(resource, team string, timestamp time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueueLocked(resource, team, timestamp)
}

// DequeueNext pops the head of the team at the front of the rotation and moves
// that team to the back. Teams whose queue has drained are dropped from the
// rotation as they reach the front. It reports false once no team has work.
func (m *Manager) DequeueNext() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dequeueLocked()
}

// IsEmpty reports whether every team queue is empty.
func (m *Manager) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.queues {
		if len(q) > 0 {
			return false
		}
	}
	return true
}

// IsDispatched reports whether the pair was ever released.
func (m *Manager) IsDispatched(resource, team string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.dispatched[Key{Team: team, Resource: resource}]
	return ok
}

// MarkDispatched records the pair as released. Repeated calls are no-ops.
func (m *Manager) MarkDispatched(resource, team string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markLocked(resource, team)
}

// IsQueued reports whether the pair is committed and still waiting in its
// team queue.
func (m *Manager) IsQueued(resource, team string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.queues[team] {
		if entry.Resource == resource {
			return true
		}
	}
	return false
}

// Pending returns the committed, undispatched entries in the order successive
// DequeueNext calls would release them. The queue is not modified.
func (m *Manager) Pending() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	heads := make(map[string]int, len(m.order))
	order := append([]string(nil), m.order...)
	var out []Entry
	for len(order) > 0 {
		team := order[0]
		order = order[1:]
		idx := heads[team]
		q := m.queues[team]
		if idx >= len(q) {
			continue
		}
		out = append(out, q[idx])
		heads[team] = idx + 1
		order = append(order, team)
	}
	return out
}

// Stats summarizes queue occupancy.
type Stats struct {
	Teams      int `json:"teams"`
	Queued     int `json:"queued"`
	Dispatched int `json:"dispatched"`
}

// Stats returns the current occupancy counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Stats{Dispatched: len(m.dispatched)}
	for _, q := range m.queues {
		if len(q) == 0 {
			continue
		}
		stats.Teams++
		stats.Queued += len(q)
	}
	return stats
}

func (m *Manager) enqueueLocked(resource, team string, timestamp time.Time) {
	if timestamp.IsZero() {
		timestamp = m.now()
	}
	q, known := m.queues[team]
	if !known {
		m.order = append(m.order, team)
	}
	m.queues[team] = append(q, Entry{
		Team:      team,
		Resource:  resource,
		Timestamp: timestamp.UTC(),
	})
}

func (m *Manager) dequeueLocked() (Entry, bool) {
	for len(m.order) > 0 {
		team := m.order[0]
		m.order = m.order[1:]
		q := m.queues[team]
		if len(q) == 0 {
			delete(m.queues, team)
			continue
		}
		head := q[0]
		m.queues[team] = q[1:]
		m.order = append(m.order, team)
		return head, true
	}
	return Entry{}, false
}

func (m *Manager) markLocked(resource, team string) {
	m.dispatched[Key{Team: team, Resource: resource}] = struct{}{}
}
