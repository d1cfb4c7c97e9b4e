package dispatchlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"karaparty/internal/queue"
)

// TimestampLayout is the minute-resolution format used in the JSON log file.
const TimestampLayout = "2006-01-02 15:04"

// Record is one song released to the playlist.
type Record struct {
	Team      string
	Resource  string
	Timestamp time.Time
	CycleID   string
}

// FromEntries converts released queue entries into log records.
func FromEntries(entries []queue.Entry, cycleID string) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Record{
			Team:      e.Team,
			Resource:  e.Resource,
			Timestamp: e.Timestamp.UTC(),
			CycleID:   cycleID,
		})
	}
	return records
}

type wireRecord struct {
	Team      string `json:"team"`
	Link      string `json:"link"`
	Timestamp string `json:"timestamp"`
	CycleID   string `json:"cycle_id,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		Team:      r.Team,
		Link:      r.Resource,
		Timestamp: r.Timestamp.UTC().Format(TimestampLayout),
		CycleID:   r.CycleID,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return err
	}
	*r = Record{Team: w.Team, Resource: w.Link, Timestamp: ts, CycleID: w.CycleID}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Log is an append-only record of dispatched songs.
type Log interface {
	Append(ctx context.Context, records []Record) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}
