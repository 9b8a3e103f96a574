package workflow

import (
	"fmt"
	"sort"
)

var knownEvents = map[string]bool{
	EventPush:        true,
	EventPullRequest: true,
}

// Validate checks the structural rules a workflow must satisfy before
// the engine will accept it. Errors name the offending field path.
func Validate(wf *Workflow) error {
	if len(wf.On) == 0 {
		return fmt.Errorf("on: at least one trigger event is required")
	}
	for _, event := range wf.On {
		if !knownEvents[event] {
			return fmt.Errorf("on: unknown event %q", event)
		}
	}
	if len(wf.Jobs) == 0 {
		return fmt.Errorf("jobs: at least one job is required")
	}
	for _, name := range SortedJobNames(wf) {
		job := wf.Jobs[name]
		if len(job.Steps) == 0 {
			return fmt.Errorf("jobs.%s.steps: at least one step is required", name)
		}
		for i, step := range job.Steps {
			if step.Uses != "" && step.Run != "" {
				return fmt.Errorf("jobs.%s.steps[%d]: step sets both uses and run", name, i)
			}
			if step.Uses == "" && step.Run == "" {
				return fmt.Errorf("jobs.%s.steps[%d]: step must set uses or run", name, i)
			}
			if step.Uses == "" && len(step.With) > 0 {
				return fmt.Errorf("jobs.%s.steps[%d]: with requires uses", name, i)
			}
			if step.Timeout < 0 {
				return fmt.Errorf("jobs.%s.steps[%d]: negative timeout", name, i)
			}
		}
	}
	return nil
}

// SortedJobNames returns job names in a stable order. YAML mappings do not
// preserve declaration order through a map, so jobs run alphabetically;
// the canonical workflow has a single job and is unaffected.
func SortedJobNames(wf *Workflow) []string {
	names := make([]string, 0, len(wf.Jobs))
	for name := range wf.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
