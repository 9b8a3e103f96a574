package engine

import "forgeci/internal/workflow"

// Sequencer decides execution order: jobs in stable name order, steps
// strictly in declaration order. There is no matrix expansion and no
// parallelism; the first failing step halts the run.
type Sequencer struct{}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// JobOrder returns the job names in the order they will run.
func (s *Sequencer) JobOrder(wf *workflow.Workflow) []string {
	return workflow.SortedJobNames(wf)
}

// Steps returns a job's steps in declaration order.
func (s *Sequencer) Steps(job workflow.Job) []workflow.Step {
	return job.Steps
}
