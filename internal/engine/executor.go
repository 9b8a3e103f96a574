package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultStepTimeout applies when a step declares no timeout of its own.
const DefaultStepTimeout = 30 * time.Minute

// Executor runs shell steps inside the run workspace.
type Executor struct {
	Workspace string
}

func NewExecutor(workspace string) *Executor {
	return &Executor{Workspace: workspace}
}

// RunCommand executes a single shell command (sh -c) and returns its
// combined output and exit code. A non-zero exit is reported through the
// returned error as well, so callers can treat any non-nil error as a
// failed step.
func (e *Executor) RunCommand(ctx context.Context, command string, env []string, timeout time.Duration) (string, int, error) {
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.Workspace
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	exitCode := 0
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		exitCode = exitErr.ExitCode()
	default:
		exitCode = -1
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("step timed out after %s", timeout)
	}
	return out.String(), exitCode, err
}

// MergeEnv layers overlay mappings on top of a base environment. Later
// overlays win; the merged slice is a fresh copy, so the overlay is
// visible only to the process it is handed to.
func MergeEnv(base []string, overlays ...map[string]string) []string {
	merged := make([]string, len(base))
	copy(merged, base)
	for _, overlay := range overlays {
		for k, v := range overlay {
			merged = append(merged, k+"="+v)
		}
	}
	return merged
}
