package checks

import "time"

// RunRecord is one settled run, appended to the journal.
type RunRecord struct {
	ID          string    `json:"id"`
	BatchID     string    `json:"batch_id,omitempty"`
	CheckID     CheckID   `json:"check_id"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	Details     []string  `json:"details"`
	OracleError string    `json:"oracle_error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// Settlement is what the runner reports after each check settles.
type Settlement struct {
	Definition CheckDefinition
	BatchID    string
	Verdict    Verdict
	State      CheckState
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// BatchEntry one line of a batch report.
type BatchEntry struct {
	CheckID     CheckID `json:"check_id"`
	Name        string  `json:"name"`
	Verdict     Verdict `json:"verdict"`
	OracleError string  `json:"oracle_error,omitempty"`
}

// BatchReport summary of a run-all, archived as JSON.
type BatchReport struct {
	BatchID    string       `json:"batch_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Entries    []BatchEntry `json:"entries"`
}

// Feature is a security control shown on the dashboard as implemented or planned.
type Feature struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Implemented bool   `json:"implemented" yaml:"implemented"`
}
