package engine

import "time"

// Status tracks where a step or run is in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Conclusion is the terminal outcome of a completed step or run.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionCancelled Conclusion = "cancelled"
)

// StepResult records the outcome of a single step.
type StepResult struct {
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	Conclusion  Conclusion `json:"conclusion,omitempty"`
	ExitCode    int        `json:"exit_code"`
	LogPath     string     `json:"log_path,omitempty"`
	StartedAt   time.Time  `json:"started_at,omitempty"`
	CompletedAt time.Time  `json:"completed_at,omitempty"`
}

// RunResult is the full record of one pipeline run. Runs are ephemeral:
// nothing here carries over to the next run.
type RunResult struct {
	ID          string       `json:"id"`
	Workflow    string       `json:"workflow"`
	Event       Event        `json:"event"`
	Status      Status       `json:"status"`
	Conclusion  Conclusion   `json:"conclusion,omitempty"`
	Steps       []StepResult `json:"steps"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at,omitempty"`
}
