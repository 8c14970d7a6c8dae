package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
)

// Record is the stored trace of one bridge call
type Record struct {
	ID          string    `json:"id"` // UUID v4
	Actions     []string  `json:"actions"`
	Timestamp   uint64    `json:"timestamp"` // Request timestamp sent to the backend
	BackendPath string    `json:"backend_path"`
	Payload     string    `json:"payload"`
	Stdout      string    `json:"stdout"`
	Stderr      string    `json:"stderr"`
	ExitCode    int       `json:"exit_code"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRecord builds a record from a finished bridge call
func NewRecord(call bridge.Call) *Record {
	rec := &Record{
		ID:          uuid.New().String(),
		Actions:     call.Request.Actions,
		Timestamp:   call.Request.Timestamp,
		BackendPath: call.BackendPath,
		Payload:     call.Payload,
		CreatedAt:   call.StartedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Actions == nil {
		rec.Actions = []string{}
	}
	if call.Output != nil {
		rec.Stdout = string(call.Output.Stdout)
		rec.Stderr = string(call.Output.Stderr)
		rec.ExitCode = call.Output.ExitCode
		rec.DurationMs = call.Output.Duration.Milliseconds()
	}
	if call.Err != nil {
		rec.Error = call.Err.Error()
	}
	return rec
}

// GetShortID returns the shortened record ID (first 8 characters)
func (r *Record) GetShortID() string {
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}

// Status returns a one-word summary of how the call ended
func (r *Record) Status() string {
	switch {
	case r.ExitCode != 0:
		return fmt.Sprintf("exit %d", r.ExitCode)
	case r.Error != "":
		return "failed"
	default:
		return "ok"
	}
}

// Failed reports whether the call ended with an error
func (r *Record) Failed() bool {
	return r.Error != "" || r.ExitCode != 0
}
