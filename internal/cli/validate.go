package cli

import (
	"github.com/spf13/cobra"

	"forgeci/internal/workflow"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow.yaml>",
		Short: "Parse and validate a workflow without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.Load(args[0])
			if err != nil {
				return err
			}
			steps := 0
			for _, job := range wf.Jobs {
				steps += len(job.Steps)
			}
			cmd.Printf("%s: ok (%d job(s), %d step(s), on: %v)\n", args[0], len(wf.Jobs), steps, []string(wf.On))
			return nil
		},
	}
}
