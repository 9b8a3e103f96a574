package trigger

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"forgeci/internal/engine"
	"forgeci/internal/workflow"
)

// RunnerFactory builds a runner bound to a fresh workspace. The daemon
// provisions one workspace per run and discards it afterwards.
type RunnerFactory func(workspace string) *engine.Runner

// Server ingests webhook events and executes runs one at a time. Runs
// never overlap: a single worker drains the queue sequentially.
type Server struct {
	wf      *workflow.Workflow
	factory RunnerFactory
	log     zerolog.Logger

	queue chan queuedRun

	mu   sync.RWMutex
	runs map[string]*runRecord
}

type queuedRun struct {
	id    string
	event engine.Event
}

type runRecord struct {
	ID         string            `json:"id"`
	Status     engine.Status     `json:"status"`
	Conclusion engine.Conclusion `json:"conclusion,omitempty"`
	Event      engine.Event      `json:"event"`
	Result     *engine.RunResult `json:"result,omitempty"`
}

// NewServer builds the trigger server. queueSize bounds how many runs
// may wait; beyond it webhooks get 503 instead of being dropped.
func NewServer(wf *workflow.Workflow, factory RunnerFactory, log zerolog.Logger, queueSize int) *Server {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Server{
		wf:      wf,
		factory: factory,
		log:     log,
		queue:   make(chan queuedRun, queueSize),
		runs:    map[string]*runRecord{},
	}
}

// Router returns the HTTP surface of the daemon.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/hooks/push", s.handlePush)
	r.Post("/hooks/pull_request", s.handlePullRequest)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// Start launches the single run worker. It returns immediately; the
// worker exits when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Server) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-s.queue:
			s.execute(ctx, q)
		}
	}
}

func (s *Server) execute(ctx context.Context, q queuedRun) {
	s.update(q.id, func(rec *runRecord) {
		rec.Status = engine.StatusInProgress
	})

	workspace, err := os.MkdirTemp("", "forgeci-"+q.id+"-")
	if err != nil {
		s.log.Error().Err(err).Str("run", q.id).Msg("cannot provision workspace")
		s.update(q.id, func(rec *runRecord) {
			rec.Status = engine.StatusCompleted
			rec.Conclusion = engine.ConclusionFailure
		})
		return
	}
	defer os.RemoveAll(workspace)

	runner := s.factory(workspace)
	res, err := runner.RunWithID(ctx, s.wf, q.event, q.id)
	if err != nil {
		// ErrStepFailed still carries a complete result; anything else
		// already logged by the runner.
		s.log.Warn().Err(err).Str("run", q.id).Msg("run did not pass")
	}
	s.update(q.id, func(rec *runRecord) {
		rec.Status = engine.StatusCompleted
		rec.Result = res
		if res != nil {
			rec.Conclusion = res.Conclusion
		}
	})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var payload pushPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	ev, err := payload.event()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.enqueue(w, ev)
}

func (s *Server) handlePullRequest(w http.ResponseWriter, r *http.Request) {
	var payload pullRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	ev, err := payload.event()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.enqueue(w, ev)
}

// enqueue admits an event the workflow subscribes to. There are no
// branch or path filters: every matching event starts a run.
func (s *Server) enqueue(w http.ResponseWriter, ev engine.Event) {
	if !s.wf.On.Contains(ev.Type) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored", "reason": "workflow does not subscribe to " + ev.Type})
		return
	}

	id := ksuid.New().String()
	s.mu.Lock()
	s.runs[id] = &runRecord{ID: id, Status: engine.StatusPending, Event: ev}
	s.mu.Unlock()

	select {
	case s.queue <- queuedRun{id: id, event: ev}:
		s.log.Info().Str("run", id).Str("event", ev.Type).Str("sha", ev.SHA).Msg("run queued")
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": string(engine.StatusPending)})
	default:
		s.mu.Lock()
		delete(s.runs, id)
		s.mu.Unlock()
		http.Error(w, "run queue full", http.StatusServiceUnavailable)
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	rec, ok := s.runs[id]
	var snapshot runRecord
	if ok {
		snapshot = *rec
	}
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) update(id string, fn func(*runRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		fn(rec)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
