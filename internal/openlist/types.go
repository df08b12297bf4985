package openlist

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"
)

// Envelope is the uniform response wrapper every OpenList endpoint uses.
// Data is kept raw so each operation can decode its own shape.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Entry is a file or directory as reported by the server. Entries are
// parsed from listing, search, and stat responses — the client never
// constructs one itself. Sign and RawURL are only populated by Stat.
type Entry struct {
	Name     string
	Size     int64
	IsDir    bool
	Modified time.Time
	Parent   string // search results only
	Sign     string
	RawURL   string // pre-signed, may point outside the server; never log
}

// TaskState is the lifecycle state of a server-side offline-download task.
// The server drives all transitions; the client only observes them.
type TaskState int

// Task states as reported by the server, in the server's numeric order.
// The happy path is pending -> running -> succeeded; errored is a fatal
// tool error, failing/failed is the post-transfer failure path, and the
// retry states cycle back into running.
const (
	TaskStatePending TaskState = iota
	TaskStateRunning
	TaskStateSucceeded
	TaskStateCanceling
	TaskStateCanceled
	TaskStateErrored
	TaskStateFailing
	TaskStateFailed
	TaskStateWaitingRetry
	TaskStateBeforeRetry
)

var taskStateNames = map[TaskState]string{
	TaskStatePending:      "pending",
	TaskStateRunning:      "running",
	TaskStateSucceeded:    "succeeded",
	TaskStateCanceling:    "canceling",
	TaskStateCanceled:     "canceled",
	TaskStateErrored:      "errored",
	TaskStateFailing:      "failing",
	TaskStateFailed:       "failed",
	TaskStateWaitingRetry: "waiting-retry",
	TaskStateBeforeRetry:  "before-retry",
}

func (s TaskState) String() string {
	if name, ok := taskStateNames[s]; ok {
		return name
	}

	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether the state is final — no further transitions
// will be observed by polling.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateSucceeded, TaskStateCanceled, TaskStateErrored, TaskStateFailed:
		return true
	default:
		return false
	}
}

// Task is an offline-download task polled from the server. Progress is a
// percentage in [0, 100].
type Task struct {
	ID       string
	Name     string
	State    TaskState
	Status   string
	Progress float64
	Error    string
}

// Storage is a configured storage backend as listed by the admin API.
type Storage struct {
	ID        int
	MountPath string
	Driver    string
	Disabled  bool
	Status    string
	Remark    string
}

// User is the authenticated account as reported by /api/me.
type User struct {
	ID       int
	Username string
	BasePath string
	Role     int
	Disabled bool
}

// Timestamp validation bounds — values outside this range are replaced
// with the current time and a warning is logged.
const (
	minValidYear = 1970
	maxValidYear = 2100
)

// parseTimestamp parses an RFC3339 timestamp and validates the year range.
// Invalid or out-of-range timestamps are replaced with time.Now().UTC() and
// logged — some storage drivers report zero or garbage modification times.
func parseTimestamp(raw, field, name string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp, using current time",
			slog.String("field", field),
			slog.String("name", name),
			slog.String("raw", raw),
			slog.String("error", err.Error()),
		)

		return time.Now().UTC()
	}

	if t.Year() < minValidYear || t.Year() > maxValidYear {
		logger.Warn("timestamp out of valid range, using current time",
			slog.String("field", field),
			slog.String("name", name),
			slog.String("raw", raw),
		)

		return time.Now().UTC()
	}

	return t
}
