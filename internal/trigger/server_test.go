package trigger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgeci/internal/engine"
	"forgeci/internal/workflow"
)

const pushBody = `{
  "ref": "refs/heads/main",
  "after": "abc123def456",
  "repository": {
    "name": "widget",
    "full_name": "acme/widget",
    "clone_url": "https://example.com/acme/widget.git",
    "owner": {"login": "acme"}
  }
}`

const prBody = `{
  "number": 7,
  "pull_request": {"head": {"ref": "feature", "sha": "fed654cba321"}},
  "repository": {
    "full_name": "acme/widget",
    "clone_url": "https://example.com/acme/widget.git",
    "owner": {"login": "acme"}
  }
}`

func echoWorkflow(on ...string) *workflow.Workflow {
	return &workflow.Workflow{
		Name: "test",
		On:   workflow.Triggers(on),
		Jobs: map[string]workflow.Job{
			"default": {Steps: []workflow.Step{{Name: "hello", Run: "echo hello"}}},
		},
	}
}

func localFactory(workspace string) *engine.Runner {
	return engine.NewRunner(workspace, zerolog.Nop())
}

func TestPushPayloadEvent(t *testing.T) {
	var payload pushPayload
	require.NoError(t, json.Unmarshal([]byte(pushBody), &payload))

	ev, err := payload.event()
	require.NoError(t, err)
	assert.Equal(t, workflow.EventPush, ev.Type)
	assert.Equal(t, "acme", ev.Owner)
	assert.Equal(t, "widget", ev.Repo)
	assert.Equal(t, "refs/heads/main", ev.Ref)
	assert.Equal(t, "abc123def456", ev.SHA)
}

func TestPullRequestPayloadEvent(t *testing.T) {
	var payload pullRequestPayload
	require.NoError(t, json.Unmarshal([]byte(prBody), &payload))

	ev, err := payload.event()
	require.NoError(t, err)
	assert.Equal(t, workflow.EventPullRequest, ev.Type)
	assert.Equal(t, "widget", ev.Repo, "repo name derived from full_name")
	assert.Equal(t, "fed654cba321", ev.SHA)
	assert.Equal(t, 7, ev.PRNumber)
}

func TestPushPayloadRequiresSHA(t *testing.T) {
	_, err := pushPayload{Ref: "refs/heads/main"}.event()
	require.Error(t, err)
}

func TestWebhookRunsToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(echoWorkflow(workflow.EventPush, workflow.EventPullRequest), localFactory, zerolog.Nop(), 4)
	srv.Start(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/hooks/push", "application/json", strings.NewReader(pushBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	id := accepted["id"]
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		r, err := http.Get(ts.URL + "/runs/" + id)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var rec struct {
			Status     engine.Status     `json:"status"`
			Conclusion engine.Conclusion `json:"conclusion"`
		}
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			return false
		}
		return rec.Status == engine.StatusCompleted && rec.Conclusion == engine.ConclusionSuccess
	}, 10*time.Second, 50*time.Millisecond)
}

func TestWebhookIgnoresUnsubscribedEvent(t *testing.T) {
	srv := NewServer(echoWorkflow(workflow.EventPush), localFactory, zerolog.Nop(), 4)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/hooks/pull_request", "application/json", strings.NewReader(prBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ignored", body["status"])
}

func TestWebhookMalformedPayload(t *testing.T) {
	srv := NewServer(echoWorkflow(workflow.EventPush), localFactory, zerolog.Nop(), 4)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/hooks/push", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueueFullReturns503(t *testing.T) {
	// Worker never started: the first request fills the queue, the
	// second has nowhere to go.
	srv := NewServer(echoWorkflow(workflow.EventPush), localFactory, zerolog.Nop(), 1)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	first, err := http.Post(ts.URL+"/hooks/push", "application/json", strings.NewReader(pushBody))
	require.NoError(t, err)
	first.Body.Close()
	require.Equal(t, http.StatusAccepted, first.StatusCode)

	second, err := http.Post(ts.URL+"/hooks/push", "application/json", strings.NewReader(pushBody))
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, second.StatusCode)
}

func TestGetUnknownRun(t *testing.T) {
	srv := NewServer(echoWorkflow(workflow.EventPush), localFactory, zerolog.Nop(), 1)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
