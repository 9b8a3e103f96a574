// Package status reports run outcomes upstream against the triggering
// commit, the way the hosting platform surfaces pipeline results.
package status

import "context"

// State mirrors the commit-status states the hosting API accepts.
type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateError   State = "error"
)

// CommitStatus is one status update for a revision.
type CommitStatus struct {
	Owner       string
	Repo        string
	SHA         string
	State       State
	Context     string
	Description string
	TargetURL   string
}

// Reporter posts commit statuses upstream.
type Reporter interface {
	SetStatus(ctx context.Context, s CommitStatus) error
}

// Noop discards status updates; used for local CLI runs.
type Noop struct{}

func (Noop) SetStatus(context.Context, CommitStatus) error { return nil }
