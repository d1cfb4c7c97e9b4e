package intake

import (
	"context"
	"log/slog"

	"karaparty/internal/links"
	"karaparty/internal/logging"
	"karaparty/internal/notifications"
	"karaparty/internal/queue"
)

// TeamFilter decides whether a team may submit songs.
type TeamFilter interface {
	IsMonitored(team string) bool
}

// Outcome reports what happened to a submission event.
type Outcome struct {
	Accepted bool    `json:"accepted"`
	Ignored  bool    `json:"ignored,omitempty"`
	Warning  Warning `json:"warning,omitempty"`
	Message  string  `json:"message,omitempty"`
	Team     string  `json:"team,omitempty"`
	Resource string  `json:"resource,omitempty"`
}

func accepted(team, resource string) Outcome {
	return Outcome{Accepted: true, Team: team, Resource: resource}
}

func ignored(team string) Outcome {
	return Outcome{Ignored: true, Team: team}
}

func warned(team, resource string, w Warning) Outcome {
	return Outcome{Warning: w, Message: w.Message(), Team: team, Resource: resource}
}

// Handler turns chat-style submission events into staging buffer operations.
type Handler struct {
	buffer   *queue.Buffer
	manager  *queue.Manager
	teams    TeamFilter
	notifier notifications.Service
	logger   *slog.Logger
}

// New constructs a Handler. A nil filter accepts every team and a nil notifier
// publishes nothing.
func New(buffer *queue.Buffer, manager *queue.Manager, teams TeamFilter, notifier notifications.Service, logger *slog.Logger) *Handler {
	return &Handler{
		buffer:   buffer,
		manager:  manager,
		teams:    teams,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "intake"),
	}
}

// Submit stages the single link found in text for team.
func (h *Handler) Submit(ctx context.Context, team, text string) Outcome {
	team = links.NormalizeTeam(team)
	if !h.monitored(team) {
		return h.reject(ctx, warned(team, "", WarningUnwantedChannel))
	}
	resource, ok := links.Extract(text)
	if !ok {
		return h.reject(ctx, warned(team, "", WarningInvalidMessage))
	}
	if h.manager.IsDispatched(resource, team) || h.manager.IsQueued(resource, team) {
		return h.reject(ctx, warned(team, resource, WarningRepeatedSong))
	}
	if res := h.buffer.AddSong(team, resource); !res.Success {
		return h.reject(ctx, warned(team, resource, WarningRepeatedSong))
	}
	h.logger.Info("song staged",
		logging.String(logging.FieldEventType, "song_staged"),
		logging.Team(team),
		logging.Resource(resource),
	)
	return accepted(team, resource)
}

// Delete withdraws a staged link. Text without a valid link is ignored.
func (h *Handler) Delete(ctx context.Context, team, text string) Outcome {
	team = links.NormalizeTeam(team)
	if !h.monitored(team) {
		return ignored(team)
	}
	resource, ok := links.Extract(text)
	if !ok {
		return ignored(team)
	}
	if res := h.buffer.DeleteSong(team, resource); !res.Success {
		return h.reject(ctx, warned(team, resource, h.lockedWarning(team, resource, WarningDeleteQueued, WarningDeleteDispatched)))
	}
	h.logger.Info("staged song withdrawn",
		logging.String(logging.FieldEventType, "song_withdrawn"),
		logging.Team(team),
		logging.Resource(resource),
	)
	return accepted(team, resource)
}

// Edit replaces the link of a staged submission after the message changed
// from before to after. Unchanged text is ignored. When the new text has no
// valid link the old staged link is withdrawn.
func (h *Handler) Edit(ctx context.Context, team, before, after string) Outcome {
	team = links.NormalizeTeam(team)
	if !h.monitored(team) {
		return ignored(team)
	}
	if before == after {
		return ignored(team)
	}
	oldResource, oldOK := links.Extract(before)
	newResource, newOK := links.Extract(after)
	if !oldOK || !newOK {
		if oldOK {
			h.buffer.DeleteSong(team, oldResource)
		}
		return h.reject(ctx, warned(team, "", WarningInvalidMessage))
	}
	if oldResource == newResource {
		return ignored(team)
	}
	if h.manager.IsDispatched(newResource, team) || h.manager.IsQueued(newResource, team) {
		return h.reject(ctx, warned(team, newResource, WarningRepeatedSong))
	}
	res := h.buffer.ReplaceSong(team, oldResource, newResource)
	switch res.Reason {
	case queue.ReasonNone:
	case queue.ReasonDuplicateStaged:
		return h.reject(ctx, warned(team, newResource, WarningRepeatedSong))
	default:
		return h.reject(ctx, warned(team, oldResource, h.lockedWarning(team, oldResource, WarningEditQueued, WarningEditDispatched)))
	}
	h.logger.Info("staged song replaced",
		logging.String(logging.FieldEventType, "song_replaced"),
		logging.Team(team),
		logging.String("previous_resource", oldResource),
		logging.Resource(newResource),
	)
	return accepted(team, newResource)
}

// lockedWarning picks the warning for a staged entry that can no longer be
// changed. Entries still waiting in the fairness queue get the queued variant;
// anything else is reported as already sent to the playlist.
func (h *Handler) lockedWarning(team, resource string, queued, dispatched Warning) Warning {
	if h.manager.IsQueued(resource, team) {
		return queued
	}
	return dispatched
}

func (h *Handler) monitored(team string) bool {
	if team == "" {
		return false
	}
	if h.teams == nil {
		return true
	}
	return h.teams.IsMonitored(team)
}

func (h *Handler) reject(ctx context.Context, out Outcome) Outcome {
	logging.WithContext(ctx, h.logger).Info("submission rejected",
		logging.String(logging.FieldEventType, "submission_rejected"),
		logging.Team(out.Team),
		logging.String("warning", string(out.Warning)),
	)
	if h.notifier != nil {
		payload := notifications.Payload{
			"team":    out.Team,
			"warning": string(out.Warning),
			"message": out.Message,
		}
		if err := h.notifier.Publish(ctx, notifications.EventSubmissionWarning, payload); err != nil {
			logging.WarnWithContext(h.logger, "warning notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ntfy topic and connectivity"),
				logging.String(logging.FieldImpact, "operator did not receive the rejection notice"),
			)
		}
	}
	return out
}
