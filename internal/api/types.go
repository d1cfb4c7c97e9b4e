package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SubmissionRequest carries a new or deleted chat message.
type SubmissionRequest struct {
	Team string `json:"team"`
	Text string `json:"text"`
}

// EditRequest carries both versions of an edited chat message.
type EditRequest struct {
	Team   string `json:"team"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Outcome reports how a submission event was handled.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Ignored  bool   `json:"ignored,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Message  string `json:"message,omitempty"`
	Team     string `json:"team,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// DispatchedSong is one dispatch log row. Field names and the timestamp
// layout match the file read by playlist consumers.
type DispatchedSong struct {
	Team      string `json:"team"`
	Link      string `json:"link"`
	Timestamp string `json:"timestamp"`
	CycleID   string `json:"cycleId,omitempty"`
}

// DispatchedResponse wraps the dispatch log.
type DispatchedResponse struct {
	Songs []DispatchedSong `json:"songs"`
}

// QueueEntry is a staged or committed submission.
type QueueEntry struct {
	Team        string `json:"team"`
	Resource    string `json:"resource"`
	CommittedAt string `json:"committedAt,omitempty"`
}

// PendingResponse lists work that has not been released yet. Queued entries
// are in the order upcoming cycles will release them.
type PendingResponse struct {
	Staged []QueueEntry `json:"staged"`
	Queued []QueueEntry `json:"queued"`
}

// SettingsRequest updates dispatch settings. Omitted fields are unchanged.
type SettingsRequest struct {
	DispatchCount   *int `json:"dispatchCount,omitempty"`
	IntervalSeconds *int `json:"intervalSeconds,omitempty"`
}

// SettingsResponse reports the effective dispatch settings.
type SettingsResponse struct {
	DispatchCount   int `json:"dispatchCount"`
	IntervalSeconds int `json:"intervalSeconds"`
}

// UploadFailure describes a released song that never reached the playlist.
type UploadFailure struct {
	Team     string `json:"team"`
	Resource string `json:"resource"`
	Error    string `json:"error"`
	Hint     string `json:"hint,omitempty"`
}

// CycleReport summarizes a dispatch cycle.
type CycleReport struct {
	ID        string          `json:"id"`
	StartedAt string          `json:"startedAt"`
	Released  []QueueEntry    `json:"released"`
	Failures  []UploadFailure `json:"failures,omitempty"`
	LogError  string          `json:"logError,omitempty"`
}

// DispatcherStatus summarizes the dispatch loop.
type DispatcherStatus struct {
	Running         bool   `json:"running"`
	IntervalSeconds int    `json:"intervalSeconds"`
	DispatchCount   int    `json:"dispatchCount"`
	Staged          int    `json:"staged"`
	Cycles          int    `json:"cycles"`
	Released        int    `json:"released"`
	UploadFailures  int    `json:"uploadFailures"`
	LastCycleAt     string `json:"lastCycleAt,omitempty"`
	LastCycleID     string `json:"lastCycleId,omitempty"`
	LastError       string `json:"lastError,omitempty"`
}

// QueueStats mirrors fairness queue occupancy.
type QueueStats struct {
	Teams      int `json:"teams"`
	Queued     int `json:"queued"`
	Dispatched int `json:"dispatched"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running         bool             `json:"running"`
	PID             int              `json:"pid"`
	LockFilePath    string           `json:"lockFilePath"`
	DispatchLogPath string           `json:"dispatchLogPath"`
	Dispatcher      DispatcherStatus `json:"dispatcher"`
	Queue           QueueStats       `json:"queue"`
	Checks          []CheckResult    `json:"checks,omitempty"`
}

// NotificationResponse reports the result of a test notification.
type NotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
