package api

import (
	"time"

	"karaparty/internal/dispatcher"
	"karaparty/internal/dispatchlog"
	"karaparty/internal/intake"
	"karaparty/internal/preflight"
	"karaparty/internal/queue"
)

// FromOutcome converts an intake outcome to its API representation.
func FromOutcome(out intake.Outcome) Outcome {
	return Outcome{
		Accepted: out.Accepted,
		Ignored:  out.Ignored,
		Warning:  string(out.Warning),
		Message:  out.Message,
		Team:     out.Team,
		Resource: out.Resource,
	}
}

// FromRecords converts dispatch log rows. A nil input yields an empty,
// non-nil slice so consumers always receive a JSON array.
func FromRecords(records []dispatchlog.Record) []DispatchedSong {
	out := make([]DispatchedSong, 0, len(records))
	for _, rec := range records {
		out = append(out, DispatchedSong{
			Team:      rec.Team,
			Link:      rec.Resource,
			Timestamp: rec.Timestamp.UTC().Format(dispatchlog.TimestampLayout),
			CycleID:   rec.CycleID,
		})
	}
	return out
}

// FromEntries converts committed queue entries.
func FromEntries(entries []queue.Entry) []QueueEntry {
	out := make([]QueueEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, QueueEntry{
			Team:        entry.Team,
			Resource:    entry.Resource,
			CommittedAt: formatTime(entry.Timestamp),
		})
	}
	return out
}

// FromKeys converts staged buffer keys, which carry no timestamp yet.
func FromKeys(keys []queue.Key) []QueueEntry {
	out := make([]QueueEntry, 0, len(keys))
	for _, key := range keys {
		out = append(out, QueueEntry{Team: key.Team, Resource: key.Resource})
	}
	return out
}

// FromCycleReport converts a dispatcher cycle report.
func FromCycleReport(report dispatcher.CycleReport) CycleReport {
	dto := CycleReport{
		ID:        report.ID,
		StartedAt: formatTime(report.StartedAt),
		Released:  FromEntries(report.Released),
		LogError:  report.LogError,
	}
	for _, failure := range report.Failures {
		dto.Failures = append(dto.Failures, UploadFailure{
			Team:     failure.Entry.Team,
			Resource: failure.Entry.Resource,
			Error:    failure.Error,
			Hint:     failure.Hint,
		})
	}
	return dto
}

// FromDispatcherStatus converts the dispatch loop snapshot.
func FromDispatcherStatus(status dispatcher.Status) DispatcherStatus {
	return DispatcherStatus{
		Running:         status.Running,
		IntervalSeconds: int(status.Interval / time.Second),
		DispatchCount:   status.DispatchCount,
		Staged:          status.Staged,
		Cycles:          status.Cycles,
		Released:        status.Released,
		UploadFailures:  status.UploadFailures,
		LastCycleAt:     formatTime(status.LastCycleAt),
		LastCycleID:     status.LastCycleID,
		LastError:       status.LastError,
	}
}

// FromQueueStats converts fairness queue counters.
func FromQueueStats(stats queue.Stats) QueueStats {
	return QueueStats{Teams: stats.Teams, Queued: stats.Queued, Dispatched: stats.Dispatched}
}

// FromChecks converts preflight results.
func FromChecks(results []preflight.Result) []CheckResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
