package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"karaparty/internal/api"
	"karaparty/internal/config"
	"karaparty/internal/logging"
)

const maxRequestBody = 64 << 10

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(strings.TrimSpace(cfg.Paths.APIToken)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	// Playlist consumers poll /songs without credentials.
	mux.HandleFunc("GET /songs", s.handleSongs)

	mux.HandleFunc("GET /api/status", authMiddleware(token, s.handleStatus))
	mux.HandleFunc("GET /api/dispatched", authMiddleware(token, s.handleDispatched))
	mux.HandleFunc("GET /api/pending", authMiddleware(token, s.handlePending))
	mux.HandleFunc("POST /api/submissions", authMiddleware(token, s.handleSubmit))
	mux.HandleFunc("POST /api/submissions/delete", authMiddleware(token, s.handleDelete))
	mux.HandleFunc("POST /api/submissions/edit", authMiddleware(token, s.handleEdit))
	mux.HandleFunc("PUT /api/settings", authMiddleware(token, s.handleSettings))
	mux.HandleFunc("POST /api/dispatch", authMiddleware(token, s.handleDispatch))
	mux.HandleFunc("POST /api/notifications/test", authMiddleware(token, s.handleTestNotification))
	return requestIDMiddleware(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:         status.Running,
		PID:             status.PID,
		LockFilePath:    status.LockFilePath,
		DispatchLogPath: status.DispatchLogPath,
		Dispatcher:      api.FromDispatcherStatus(status.Dispatcher),
		Queue:           api.FromQueueStats(status.Queue),
		Checks:          api.FromChecks(status.Checks),
	})
}

func (s *apiServer) handleSongs(w http.ResponseWriter, r *http.Request) {
	records, err := s.daemon.Dispatched(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromRecords(records))
}

func (s *apiServer) handleDispatched(w http.ResponseWriter, r *http.Request) {
	records, err := s.daemon.Dispatched(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.DispatchedResponse{Songs: api.FromRecords(records)})
}

func (s *apiServer) handlePending(w http.ResponseWriter, _ *http.Request) {
	staged, queued := s.daemon.Pending()
	s.writeJSON(w, http.StatusOK, api.PendingResponse{
		Staged: api.FromKeys(staged),
		Queued: api.FromEntries(queued),
	})
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmissionRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromOutcome(s.daemon.Submit(r.Context(), req.Team, req.Text)))
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req api.SubmissionRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromOutcome(s.daemon.Delete(r.Context(), req.Team, req.Text)))
}

func (s *apiServer) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req api.EditRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromOutcome(s.daemon.Edit(r.Context(), req.Team, req.Before, req.After)))
}

func (s *apiServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req api.SettingsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.DispatchCount != nil && *req.DispatchCount <= 0 {
		s.writeError(w, http.StatusBadRequest, "dispatchCount must be positive")
		return
	}
	if req.IntervalSeconds != nil && *req.IntervalSeconds <= 0 {
		s.writeError(w, http.StatusBadRequest, "intervalSeconds must be positive")
		return
	}
	var interval *time.Duration
	if req.IntervalSeconds != nil {
		d := time.Duration(*req.IntervalSeconds) * time.Second
		interval = &d
	}
	count, effective := s.daemon.UpdateSettings(req.DispatchCount, interval)
	s.writeJSON(w, http.StatusOK, api.SettingsResponse{
		DispatchCount:   count,
		IntervalSeconds: int(effective / time.Second),
	})
}

func (s *apiServer) handleDispatch(w http.ResponseWriter, r *http.Request) {
	// A disconnecting client must not abandon songs the cycle already released.
	report, err := s.daemon.Dispatch(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromCycleReport(report))
}

func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	sent, message, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", message, err))
		return
	}
	s.writeJSON(w, http.StatusOK, api.NotificationResponse{Sent: sent, Message: message})
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
