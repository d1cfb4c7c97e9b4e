package dispatcher

import (
	"context"
	"time"

	"karaparty/internal/dispatchlog"
	"karaparty/internal/logging"
	"karaparty/internal/notifications"
	"karaparty/internal/queue"
	"karaparty/internal/services"
)

// UploadFailure describes one released song the uploader could not insert.
type UploadFailure struct {
	Entry queue.Entry `json:"entry"`
	Error string      `json:"error"`
	Hint  string      `json:"hint,omitempty"`
}

// CycleReport summarizes one dispatch cycle.
type CycleReport struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	Released  []queue.Entry   `json:"released"`
	Failures  []UploadFailure `json:"failures,omitempty"`
	LogError  string          `json:"log_error,omitempty"`
}

// Uploaded returns the number of released songs the uploader accepted.
func (r CycleReport) Uploaded() int {
	return len(r.Released) - len(r.Failures)
}

// RunCycle performs one dispatch: commit staged songs, release up to the
// dispatch count, upload each, and append the batch to the dispatch log.
// Upload and log failures are reported in the CycleReport; the returned
// error is only set when ctx was already done and nothing was committed.
func (d *Driver) RunCycle(ctx context.Context) (CycleReport, error) {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()

	if err := ctx.Err(); err != nil {
		return CycleReport{}, err
	}

	report := CycleReport{ID: d.newID(), StartedAt: d.now()}
	ctx = services.WithCycleID(ctx, report.ID)
	logger := logging.WithContext(ctx, d.logger)

	staged := d.buffer.Len()
	report.Released = d.buffer.CommitAndRelease(d.manager)
	if len(report.Released) == 0 {
		logger.Debug("dispatch cycle released nothing", logging.Int("staged", staged))
		d.record(report)
		return report, nil
	}

	for _, entry := range report.Released {
		entryLogger := logger.With(
			logging.Team(entry.Team),
			logging.Resource(entry.Resource),
		)
		if err := d.uploader.Insert(ctx, entry.Resource); err != nil {
			hint := services.ErrorHint(err)
			report.Failures = append(report.Failures, UploadFailure{Entry: entry, Error: err.Error(), Hint: hint})
			logging.WarnWithContext(entryLogger, "playlist upload failed", "upload_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, hint),
				logging.String(logging.FieldImpact, "song was released but is missing from the playlist"),
			)
			d.publish(ctx, notifications.EventUploadFailed, notifications.Payload{
				"team":  entry.Team,
				"link":  entry.Resource,
				"error": err,
			})
			continue
		}
		entryLogger.Info("song dispatched", logging.String(logging.FieldEventType, "song_dispatched"))
		d.publish(ctx, notifications.EventSongDispatched, notifications.Payload{
			"team": entry.Team,
			"link": entry.Resource,
		})
	}

	if d.log != nil {
		if err := d.log.Append(ctx, dispatchlog.FromEntries(report.Released, report.ID)); err != nil {
			report.LogError = err.Error()
			logging.ErrorWithContext(logger, "dispatch log append failed", "dispatch_log_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions and free space for the dispatch log"),
			)
		}
	}

	logger.Info("dispatch cycle completed",
		logging.String(logging.FieldEventType, "cycle_completed"),
		logging.Int("staged", staged),
		logging.Int("released", len(report.Released)),
		logging.Int("failed", len(report.Failures)),
	)
	d.publish(ctx, notifications.EventCycleCompleted, notifications.Payload{
		"released": len(report.Released),
		"failed":   len(report.Failures),
	})
	d.record(report)
	return report, nil
}

func (d *Driver) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		d.logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (d *Driver) record(report CycleReport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.cycles++
	d.stats.released += len(report.Released)
	d.stats.failed += len(report.Failures)
	d.stats.lastCycleAt = report.StartedAt
	d.stats.lastCycleID = report.ID
	switch {
	case report.LogError != "":
		d.stats.lastErr = report.LogError
	case len(report.Failures) > 0:
		d.stats.lastErr = report.Failures[len(report.Failures)-1].Error
	}
}
