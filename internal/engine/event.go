package engine

import "time"

// Event is the trigger that instantiates a run: a push or a pull request
// on the hosting version-control system, or a manual CLI invocation.
type Event struct {
	Type       string    `json:"type"`
	Owner      string    `json:"owner,omitempty"`
	Repo       string    `json:"repo,omitempty"`
	CloneURL   string    `json:"clone_url,omitempty"`
	Ref        string    `json:"ref,omitempty"`
	SHA        string    `json:"sha,omitempty"`
	PRNumber   int       `json:"pr_number,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// EventManual marks runs started from the CLI rather than a webhook.
const EventManual = "manual"
