package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"karaparty/internal/config"
	"karaparty/internal/dispatcher"
	"karaparty/internal/dispatchlog"
	"karaparty/internal/intake"
	"karaparty/internal/logging"
	"karaparty/internal/notifications"
	"karaparty/internal/playlist"
	"karaparty/internal/preflight"
	"karaparty/internal/queue"
)

// Daemon owns the submission pipeline and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	manager  *queue.Manager
	buffer   *queue.Buffer
	intake   *intake.Handler
	driver   *dispatcher.Driver
	log      dispatchlog.Log
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	mu       sync.Mutex
	running  atomic.Bool
	stopping bool
	cancel   context.CancelFunc
	api      *apiServer
	checks   []preflight.Result
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	PID             int
	LockFilePath    string
	DispatchLogPath string
	APIAddress      string
	Dispatcher      dispatcher.Status
	Queue           queue.Stats
	Checks          []preflight.Result
}

// Option overrides a collaborator built from config.
type Option func(*options)

type options struct {
	uploader playlist.Uploader
	notifier notifications.Service
	log      dispatchlog.Log
}

// WithUploader replaces the configured playlist uploader.
func WithUploader(u playlist.Uploader) Option {
	return func(o *options) { o.uploader = u }
}

// WithNotifier replaces the configured notification service.
func WithNotifier(n notifications.Service) Option {
	return func(o *options) { o.notifier = n }
}

// WithDispatchLog replaces the configured dispatch log.
func WithDispatchLog(l dispatchlog.Log) Option {
	return func(o *options) { o.log = l }
}

// New constructs a daemon with initialized dependencies. Nothing runs until
// Start is called.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(cfg)
	}
	if o.uploader == nil {
		o.uploader = playlist.New(cfg)
	}
	if o.log == nil {
		log, err := dispatchlog.Open(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open dispatch log: %w", err)
		}
		o.log = log
	}

	manager := queue.NewManager()
	buffer := queue.NewBuffer(queue.WithDispatchCount(cfg.Dispatch.Count))
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		buffer:   buffer,
		intake:   intake.New(buffer, manager, cfg, o.notifier, logger),
		driver: dispatcher.New(buffer, manager, o.uploader, o.log, o.notifier, logger,
			dispatcher.WithInterval(cfg.DispatchInterval())),
		log:      o.log,
		notifier: o.notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	return d, nil
}

// Start acquires the daemon lock, runs preflight checks, and launches the
// dispatcher and HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another karaparty daemon instance is already running")
	}

	d.checks = preflight.RunAll(ctx, d.cfg)
	for _, failed := range preflight.Failed(d.checks) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.Alert("preflight"),
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldErrorHint, "fix the reported path or credential and restart"),
			logging.String(logging.FieldImpact, "dispatch may fail until resolved"),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.driver.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start dispatcher: %w", err)
	}

	srv := newAPIServer(d.cfg, d, d.logger)
	if err := srv.start(runCtx); err != nil {
		d.driver.Stop()
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.api = srv
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("karaparty daemon started",
		logging.String("lock", d.lockPath),
		logging.String("dispatch_log", d.cfg.Dispatch.LogPath),
		logging.Int("dispatch_count", d.buffer.DispatchCount()),
		logging.Duration("interval", d.driver.Interval()),
	)
	return nil
}

// Stop stops the API and dispatcher and releases the daemon lock. An
// in-flight dispatch cycle completes before Stop returns.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running.Load() || d.stopping {
		d.mu.Unlock()
		return
	}
	d.stopping = true
	srv := d.api
	d.api = nil
	d.mu.Unlock()

	// Status handlers take d.mu; drain them before locking again.
	srv.stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.driver.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.stopping = false
	d.running.Store(false)
	d.logger.Info("karaparty daemon stopped")
}

// Close stops the daemon and releases the dispatch log.
func (d *Daemon) Close() error {
	d.Stop()
	if d.log != nil {
		return d.log.Close()
	}
	return nil
}

// Submit handles a new chat message from team.
func (d *Daemon) Submit(ctx context.Context, team, text string) intake.Outcome {
	return d.intake.Submit(ctx, team, text)
}

// Delete handles a deleted chat message from team.
func (d *Daemon) Delete(ctx context.Context, team, text string) intake.Outcome {
	return d.intake.Delete(ctx, team, text)
}

// Edit handles an edited chat message from team.
func (d *Daemon) Edit(ctx context.Context, team, before, after string) intake.Outcome {
	return d.intake.Edit(ctx, team, before, after)
}

// Pending returns the staged keys and the committed entries in release order.
func (d *Daemon) Pending() ([]queue.Key, []queue.Entry) {
	return d.buffer.Staged(), d.manager.Pending()
}

// Dispatch runs a cycle immediately, outside the ticker schedule.
func (d *Daemon) Dispatch(ctx context.Context) (dispatcher.CycleReport, error) {
	return d.driver.RunCycle(ctx)
}

// Dispatched returns the dispatch log.
func (d *Daemon) Dispatched(ctx context.Context) ([]dispatchlog.Record, error) {
	return d.log.List(ctx)
}

// Settings reports the effective dispatch count and interval.
func (d *Daemon) Settings() (int, time.Duration) {
	return d.buffer.DispatchCount(), d.driver.Interval()
}

// UpdateSettings applies the provided values; nil leaves a setting unchanged.
func (d *Daemon) UpdateSettings(count *int, interval *time.Duration) (int, time.Duration) {
	if count != nil {
		d.driver.SetDispatchCount(*count)
	}
	if interval != nil {
		d.driver.SetInterval(*interval)
	}
	return d.Settings()
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	d.mu.Lock()
	checks := append([]preflight.Result(nil), d.checks...)
	address := ""
	if d.api != nil {
		address = d.api.address()
	}
	d.mu.Unlock()

	return Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		LockFilePath:    d.lockPath,
		DispatchLogPath: d.cfg.Dispatch.LogPath,
		APIAddress:      address,
		Dispatcher:      d.driver.Status(),
		Queue:           d.manager.Stats(),
		Checks:          checks,
	}
}
