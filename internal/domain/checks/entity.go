package checks

import (
	"fmt"
	"regexp"
	"time"
)

// CheckID identifier untuk security check
type CheckID string

var checkIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// URLSafe reports whether id can appear as a path segment of the API:
// lowercase alphanumeric, dash or underscore, at most 64 chars.
func (id CheckID) URLSafe() bool {
	return checkIDPattern.MatchString(string(id))
}

// Status enum
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Settled reports whether a run has finished for this status.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusFailed
}

// CheckDefinition is immutable once registered.
type CheckDefinition struct {
	ID          CheckID `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
}

// CheckState latest observed state of one check.
// Result and Details are nil until a run settles.
type CheckState struct {
	Status    Status    `json:"status"`
	Result    *string   `json:"result"`
	Details   []string  `json:"details"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IdleState is the state every check starts with.
func IdleState() CheckState {
	return CheckState{Status: StatusIdle}
}

// RunningState clears the previous outcome.
func RunningState(at time.Time) CheckState {
	return CheckState{Status: StatusRunning, UpdatedAt: at}
}

// SettledState maps a verdict to success/failed with its message and details.
func SettledState(v Verdict, at time.Time) CheckState {
	status := StatusFailed
	if v.Success {
		status = StatusSuccess
	}
	msg := v.Message
	details := make([]string, len(v.Details))
	copy(details, v.Details)
	return CheckState{Status: status, Result: &msg, Details: details, UpdatedAt: at}
}

// Validate checks that result/details are both present exactly when the status is settled.
func (s CheckState) Validate() error {
	switch s.Status {
	case StatusIdle, StatusRunning:
		if s.Result != nil || s.Details != nil {
			return fmt.Errorf("state %s must not carry result or details", s.Status)
		}
	case StatusSuccess, StatusFailed:
		if s.Result == nil || s.Details == nil {
			return fmt.Errorf("state %s requires result and details", s.Status)
		}
	default:
		return fmt.Errorf("invalid check status: %q", s.Status)
	}
	return nil
}

// Clone returns a copy that shares no memory with s.
func (s CheckState) Clone() CheckState {
	out := s
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.Details != nil {
		out.Details = append([]string{}, s.Details...)
	}
	return out
}

// Entry pairs a definition with its current state, as returned by List.
type Entry struct {
	Definition CheckDefinition `json:"definition"`
	State      CheckState      `json:"state"`
}

// Verdict hasil dari Oracle
type Verdict struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// Session identifies the run currently holding the single-flight slot.
type Session struct {
	CheckID   CheckID   `json:"check_id,omitempty"`
	BatchID   string    `json:"batch_id,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// NotificationKind channel of a notification.
type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}
