package dispatchlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"karaparty/internal/fileutil"
	"karaparty/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// JSONFile keeps the dispatch log as a JSON array on disk. Every append is a
// read-modify-write under an advisory file lock so an external reader or a
// second process sees whole files only.
type JSONFile struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.Mutex
}

// NewJSONFile returns a log backed by path. The file is created on first
// append.
func NewJSONFile(path string, logger *slog.Logger) *JSONFile {
	return &JSONFile{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "dispatchlog"),
	}
}

// Path returns the backing file location.
func (j *JSONFile) Path() string { return j.path }

func (j *JSONFile) Append(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	locked, err := j.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock dispatch log: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock dispatch log: %s is held by another process", j.lock.Path())
	}
	defer func() { _ = j.lock.Unlock() }()

	existing := j.read()
	existing = append(existing, records...)
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dispatch log: %w", err)
	}
	if err := fileutil.WriteFileAtomic(j.path, data, 0o644); err != nil {
		return fmt.Errorf("write dispatch log: %w", err)
	}
	j.logger.Debug("dispatch log appended",
		logging.Int("appended", len(records)),
		logging.Int("total", len(existing)),
		logging.String("path", j.path),
	)
	return nil
}

func (j *JSONFile) List(ctx context.Context) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	locked, err := j.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock dispatch log: %w", err)
	}
	if locked {
		defer func() { _ = j.lock.Unlock() }()
	}
	return j.read(), nil
}

// read loads the current file. A missing file is an empty log; an unreadable
// or corrupt file is logged and treated as empty.
func (j *JSONFile) read() []Record {
	data, err := fileutil.ReadFileIfExists(j.path)
	if err != nil {
		logging.WarnWithContext(j.logger, "dispatch log unreadable; starting empty", "dispatch_log_unreadable",
			logging.String("path", j.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions on the data directory"),
			logging.String(logging.FieldImpact, "previous dispatch history is not shown"),
		)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logging.WarnWithContext(j.logger, "dispatch log corrupt; starting empty", "dispatch_log_corrupt",
			logging.String("path", j.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect or move the file aside; the next append rewrites it"),
			logging.String(logging.FieldImpact, "previous dispatch history is not shown"),
		)
		return nil
	}
	return records
}

func (j *JSONFile) Close() error {
	return j.lock.Close()
}
