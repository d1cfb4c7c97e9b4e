package dispatcher

import "time"

// Status is a point-in-time snapshot of the driver.
type Status struct {
	Running        bool          `json:"running"`
	Interval       time.Duration `json:"interval"`
	DispatchCount  int           `json:"dispatch_count"`
	Staged         int           `json:"staged"`
	Cycles         int           `json:"cycles"`
	Released       int           `json:"released"`
	UploadFailures int           `json:"upload_failures"`
	LastCycleAt    time.Time     `json:"last_cycle_at,omitzero"`
	LastCycleID    string        `json:"last_cycle_id,omitempty"`
	LastError      string        `json:"last_error,omitempty"`
}

// Status returns the latest driver information.
func (d *Driver) Status() Status {
	d.mu.RLock()
	status := Status{
		Running:        d.running,
		Interval:       d.interval,
		Cycles:         d.stats.cycles,
		Released:       d.stats.released,
		UploadFailures: d.stats.failed,
		LastCycleAt:    d.stats.lastCycleAt,
		LastCycleID:    d.stats.lastCycleID,
		LastError:      d.stats.lastErr,
	}
	d.mu.RUnlock()

	status.DispatchCount = d.buffer.DispatchCount()
	status.Staged = d.buffer.Len()
	return status
}
