// Package trigger exposes the daemon's trigger surface: webhook
// ingestion for push and pull_request events and a strictly sequential
// run queue.
package trigger

import (
	"fmt"
	"strings"
	"time"

	"forgeci/internal/engine"
	"forgeci/internal/workflow"
)

// pushPayload is the subset of a push webhook the runner needs.
type pushPayload struct {
	Ref        string `json:"ref"`
	After      string `json:"after"`
	Repository repo   `json:"repository"`
}

// pullRequestPayload is the subset of a pull_request webhook the runner
// needs.
type pullRequestPayload struct {
	Number      int  `json:"number"`
	PullRequest pr   `json:"pull_request"`
	Repository  repo `json:"repository"`
}

type repo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type pr struct {
	Head struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	} `json:"head"`
}

func (p pushPayload) event() (engine.Event, error) {
	if p.After == "" {
		return engine.Event{}, fmt.Errorf("push payload: after sha is required")
	}
	return engine.Event{
		Type:       workflow.EventPush,
		Owner:      p.Repository.Owner.Login,
		Repo:       repoName(p.Repository),
		CloneURL:   p.Repository.CloneURL,
		Ref:        p.Ref,
		SHA:        p.After,
		ReceivedAt: time.Now(),
	}, nil
}

func (p pullRequestPayload) event() (engine.Event, error) {
	if p.PullRequest.Head.SHA == "" {
		return engine.Event{}, fmt.Errorf("pull_request payload: head sha is required")
	}
	return engine.Event{
		Type:       workflow.EventPullRequest,
		Owner:      p.Repository.Owner.Login,
		Repo:       repoName(p.Repository),
		CloneURL:   p.Repository.CloneURL,
		Ref:        p.PullRequest.Head.Ref,
		SHA:        p.PullRequest.Head.SHA,
		PRNumber:   p.Number,
		ReceivedAt: time.Now(),
	}, nil
}

func repoName(r repo) string {
	if r.Name != "" {
		return r.Name
	}
	if i := strings.IndexByte(r.FullName, '/'); i >= 0 {
		return r.FullName[i+1:]
	}
	return r.FullName
}
