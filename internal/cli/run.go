package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"forgeci/internal/engine"
	"forgeci/internal/logging"
	"forgeci/internal/secrets"
	"forgeci/internal/storage"
	"forgeci/internal/workflow"
)

func newRunCmd(verbose *bool) *cobra.Command {
	var (
		workspace   string
		logDir      string
		secretsFile string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Execute a workflow locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.Load(args[0])
			if err != nil {
				return err
			}

			log := logging.NewCLILogger(*verbose)
			runner := engine.NewRunner(workspace, log)
			runner.Logs = storage.NewLogStore(logDir)
			runner.DefaultTimeout = timeout
			if secretsFile != "" {
				provider, err := secrets.NewProviderFromFile(secretsFile)
				if err != nil {
					return err
				}
				runner.Secrets = provider
			}

			ev := engine.Event{Type: engine.EventManual, ReceivedAt: time.Now()}
			res, runErr := runner.Run(cmd.Context(), wf, ev)
			printSummary(cmd, res)
			return runErr
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "directory steps execute in")
	cmd.Flags().StringVar(&logDir, "log-dir", ".forgeci/logs", "directory for step logs")
	cmd.Flags().StringVar(&secretsFile, "secrets", "", "YAML file of secret values")
	cmd.Flags().DurationVar(&timeout, "timeout", engine.DefaultStepTimeout, "default per-step timeout")
	return cmd
}

func printSummary(cmd *cobra.Command, res *engine.RunResult) {
	if res == nil {
		return
	}
	cmd.Printf("run %s (%s)\n", res.ID, res.Conclusion)
	for _, step := range res.Steps {
		mark := " "
		switch step.Conclusion {
		case engine.ConclusionSuccess:
			mark = "+"
		case engine.ConclusionFailure, engine.ConclusionCancelled:
			mark = "x"
		case engine.ConclusionSkipped:
			mark = "-"
		}
		took := ""
		if !step.StartedAt.IsZero() && !step.CompletedAt.IsZero() {
			took = fmt.Sprintf(" (%s)", step.CompletedAt.Sub(step.StartedAt).Round(time.Millisecond))
		}
		cmd.Printf("  %s %02d %s%s\n", mark, step.Index, step.Name, took)
	}
}
