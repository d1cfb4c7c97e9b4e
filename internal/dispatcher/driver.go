package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"karaparty/internal/dispatchlog"
	"karaparty/internal/logging"
	"karaparty/internal/notifications"
	"karaparty/internal/playlist"
	"karaparty/internal/queue"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 60 * time.Second

// Driver periodically commits the staging buffer into the fairness queue and
// hands released songs to the uploader.
type Driver struct {
	buffer   *queue.Buffer
	manager  *queue.Manager
	uploader playlist.Uploader
	log      dispatchlog.Log
	notifier notifications.Service
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time

	// cycleMu serializes cycles; the ticker and forced dispatches share it.
	cycleMu sync.Mutex

	mu       sync.RWMutex
	interval time.Duration
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	reset    chan struct{}
	stats    cycleStats
}

type cycleStats struct {
	cycles      int
	released    int
	failed      int
	lastCycleAt time.Time
	lastCycleID string
	lastErr     string
}

// Option configures optional Driver behavior.
type Option func(*Driver)

// WithInterval sets the initial cycle interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.interval = d
		}
	}
}

// WithIDGenerator overrides cycle identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(drv *Driver) {
		if fn != nil {
			drv.newID = fn
		}
	}
}

// WithClock overrides the time source used for status reporting.
func WithClock(now func() time.Time) Option {
	return func(drv *Driver) {
		if now != nil {
			drv.now = now
		}
	}
}

// New constructs a driver. A nil uploader, log or notifier is replaced by a
// no-op so tests can wire only what they observe.
func New(buffer *queue.Buffer, manager *queue.Manager, uploader playlist.Uploader, log dispatchlog.Log, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Driver {
	if uploader == nil {
		uploader = playlist.Noop{}
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	d := &Driver{
		buffer:   buffer,
		manager:  manager,
		uploader: uploader,
		log:      log,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "dispatcher"),
		newID:    uuid.NewString,
		now:      time.Now,
		interval: DefaultInterval,
		reset:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interval returns the current cycle interval.
func (d *Driver) Interval() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.interval
}

// SetInterval changes the cycle interval. A running ticker is restarted so
// the next cycle fires one full interval after the change. Non-positive
// values are ignored and reported as false.
func (d *Driver) SetInterval(interval time.Duration) bool {
	if interval <= 0 {
		d.logger.Debug("ignoring non-positive dispatch interval", logging.Duration("interval", interval))
		return false
	}
	d.mu.Lock()
	d.interval = interval
	running := d.running
	d.mu.Unlock()

	if running {
		select {
		case d.reset <- struct{}{}:
		default:
		}
	}
	d.logger.Info("dispatch interval updated",
		logging.Duration("interval", interval),
		logging.String(logging.FieldEventType, "interval_updated"),
	)
	return true
}

// SetDispatchCount forwards n to the staging buffer.
func (d *Driver) SetDispatchCount(n int) bool {
	if !d.buffer.SetDispatchCount(n) {
		d.logger.Debug("ignoring non-positive dispatch count", logging.Int("count", n))
		return false
	}
	d.logger.Info("dispatch count updated",
		logging.Int("count", n),
		logging.String(logging.FieldEventType, "count_updated"),
	)
	return true
}

// Start launches the periodic loop.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return errors.New("dispatcher already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	interval := d.interval
	d.wg.Add(1)
	d.mu.Unlock()

	d.logger.Info("dispatcher started",
		logging.Duration("interval", interval),
		logging.Int("dispatch_count", d.buffer.DispatchCount()),
	)
	go d.loop(runCtx, interval)
	return nil
}

// Stop ends the loop and waits for an in-flight cycle to finish.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	d.running = false
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *Driver) loop(ctx context.Context, interval time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.reset:
			ticker.Reset(d.Interval())
		case <-ticker.C:
			// Cancelling the loop must not abandon songs already released.
			if _, err := d.RunCycle(context.WithoutCancel(ctx)); err != nil {
				logging.ErrorWithContext(d.logger, "dispatch cycle failed", "cycle_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check daemon logs for the failing step"),
				)
			}
		}
	}
}
