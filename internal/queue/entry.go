package queue

import "time"

// Entry is a single committed or released submission.
type Entry struct {
	Team      string    `json:"team"`
	Resource  string    `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
}

// Key is the identity of an entry. Two entries with the same team and
// resource are the same submission regardless of when they were committed.
type Key struct {
	Team     string `json:"team"`
	Resource string `json:"resource"`
}

// Key returns the identity of the entry.
func (e Entry) Key() Key {
	return Key{Team: e.Team, Resource: e.Resource}
}

// Reason explains why a staging operation was rejected.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonDuplicateStaged     Reason = "duplicate_staged"
	ReasonStagedEntryNotFound Reason = "staged_entry_not_found"
)

// Result is returned by every Buffer mutation. Rejections are ordinary
// values, never errors.
type Result struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"reason,omitempty"`
}

func accepted() Result {
	return Result{Success: true}
}

func rejected(reason Reason) Result {
	return Result{Success: false, Reason: reason}
}
