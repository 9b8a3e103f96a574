package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"forgeci/internal/actions"
	"forgeci/internal/secrets"
	"forgeci/internal/status"
	"forgeci/internal/storage"
	"forgeci/internal/workflow"
)

// ErrStepFailed marks a run stopped by a failing step. The partial
// RunResult is still returned alongside it.
var ErrStepFailed = errors.New("step failed")

// statusContext names this runner in commit statuses.
const statusContext = "forgeci"

// Runner ties together sequencer, executor, actions, secrets, log
// storage, and upstream status reporting. One Runner executes one run
// at a time; runs share nothing.
type Runner struct {
	Executor       *Executor
	Sequencer      *Sequencer
	Actions        *actions.Registry
	Secrets        *secrets.Provider
	Logs           *storage.LogStore
	Reporter       status.Reporter
	Log            zerolog.Logger
	DefaultTimeout time.Duration
}

// NewRunner builds a runner with the default wiring for the given
// workspace.
func NewRunner(workspace string, log zerolog.Logger) *Runner {
	return &Runner{
		Executor:       NewExecutor(workspace),
		Sequencer:      NewSequencer(),
		Actions:        actions.NewRegistry(),
		Secrets:        secrets.NewProvider(),
		Reporter:       status.Noop{},
		Log:            log,
		DefaultTimeout: DefaultStepTimeout,
	}
}

// Run executes every job of the workflow strictly in order, stopping at
// the first failing step. The run is discarded after completion; only
// the returned RunResult and the step logs survive.
func (r *Runner) Run(ctx context.Context, wf *workflow.Workflow, ev Event) (*RunResult, error) {
	return r.RunWithID(ctx, wf, ev, ksuid.New().String())
}

// RunWithID is Run with a caller-chosen run ID, for callers that hand
// out the ID before the run starts (the webhook daemon).
func (r *Runner) RunWithID(ctx context.Context, wf *workflow.Workflow, ev Event, id string) (*RunResult, error) {
	res := &RunResult{
		ID:        id,
		Workflow:  wf.Name,
		Event:     ev,
		Status:    StatusInProgress,
		StartedAt: time.Now(),
	}
	log := r.Log.With().Str("run", res.ID).Str("workflow", wf.Name).Logger()
	log.Info().Str("event", ev.Type).Msg("run started")

	r.report(ctx, ev, status.StatePending, "run in progress")

	failed := false
	index := 0
	for _, jobName := range r.Sequencer.JobOrder(wf) {
		job := wf.Jobs[jobName]
		for _, step := range r.Sequencer.Steps(job) {
			sr := StepResult{
				Index:  index,
				Name:   step.Label(),
				Status: StatusPending,
			}
			index++

			if failed {
				// Fail-fast: everything after the first failure is skipped.
				sr.Status = StatusCompleted
				sr.Conclusion = ConclusionSkipped
				res.Steps = append(res.Steps, sr)
				continue
			}

			sr.Status = StatusInProgress
			sr.StartedAt = time.Now()
			log.Info().Int("step", sr.Index).Str("name", sr.Name).Msg("step started")

			output, exitCode, err := r.runStep(ctx, job, step, ev, log)
			sr.ExitCode = exitCode
			sr.CompletedAt = time.Now()
			sr.Status = StatusCompleted

			if r.Logs != nil {
				path, logErr := r.Logs.SaveStepLog(res.ID, sr.Index, sr.Name, output)
				if logErr != nil {
					log.Warn().Err(logErr).Msg("cannot save step log")
				} else {
					sr.LogPath = path
				}
			}

			switch {
			case err == nil:
				sr.Conclusion = ConclusionSuccess
				log.Info().Int("step", sr.Index).Str("name", sr.Name).
					Dur("took", sr.CompletedAt.Sub(sr.StartedAt)).Msg("step succeeded")
			case ctx.Err() != nil:
				sr.Conclusion = ConclusionCancelled
				failed = true
				log.Warn().Int("step", sr.Index).Str("name", sr.Name).Msg("step cancelled")
			default:
				sr.Conclusion = ConclusionFailure
				failed = true
				log.Error().Err(err).Int("step", sr.Index).Str("name", sr.Name).
					Int("exit_code", exitCode).Msg("step failed")
			}
			res.Steps = append(res.Steps, sr)
		}
	}

	res.Status = StatusCompleted
	res.CompletedAt = time.Now()
	if failed {
		if ctx.Err() != nil {
			res.Conclusion = ConclusionCancelled
		} else {
			res.Conclusion = ConclusionFailure
		}
		r.report(ctx, ev, status.StateFailure, "run failed")
		log.Error().Str("conclusion", string(res.Conclusion)).Msg("run finished")
		return res, fmt.Errorf("run %s: %w", res.ID, ErrStepFailed)
	}

	res.Conclusion = ConclusionSuccess
	r.report(ctx, ev, status.StateSuccess, "all steps passed")
	log.Info().Str("conclusion", string(res.Conclusion)).Msg("run finished")
	return res, nil
}

// runStep dispatches one step to either the action registry or the
// shell executor. The environment is ambient + job env + step env, with
// secret references expanded; the merged copy is handed only to this
// step's process tree.
func (r *Runner) runStep(ctx context.Context, job workflow.Job, step workflow.Step, ev Event, log zerolog.Logger) (string, int, error) {
	env := MergeEnv(os.Environ(), job.Env, r.expand(step.Env))

	if step.Uses != "" {
		actx := &actions.Context{
			Workspace: r.Executor.Workspace,
			With:      r.expand(step.With),
			Env:       env,
			Ref:       ev.Ref,
			SHA:       ev.SHA,
			CloneURL:  ev.CloneURL,
			Log:       log,
		}
		output, err := r.Actions.Run(ctx, step.Uses, actx)
		if err != nil {
			return output, 1, err
		}
		return output, 0, nil
	}

	timeout := time.Duration(step.Timeout)
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}
	return r.Executor.RunCommand(ctx, step.Run, env, timeout)
}

// expand applies secret expansion to every value of a mapping.
func (r *Runner) expand(values map[string]string) map[string]string {
	if len(values) == 0 || r.Secrets == nil {
		return values
	}
	expanded := make(map[string]string, len(values))
	for k, v := range values {
		expanded[k] = r.Secrets.Expand(v)
	}
	return expanded
}

// report posts a commit status when the event carries a revision.
// Reporting failures never fail the run.
func (r *Runner) report(ctx context.Context, ev Event, state status.State, description string) {
	if r.Reporter == nil || ev.SHA == "" {
		return
	}
	err := r.Reporter.SetStatus(ctx, status.CommitStatus{
		Owner:       ev.Owner,
		Repo:        ev.Repo,
		SHA:         ev.SHA,
		State:       state,
		Context:     statusContext,
		Description: description,
	})
	if err != nil {
		r.Log.Warn().Err(err).Str("sha", ev.SHA).Msg("cannot report commit status")
	}
}
