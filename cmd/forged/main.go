// Command forged is the webhook-triggered CI daemon: it loads one
// workflow, listens for push and pull_request events, and executes runs
// strictly one at a time.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"forgeci/internal/engine"
	"forgeci/internal/logging"
	"forgeci/internal/secrets"
	"forgeci/internal/status"
	"forgeci/internal/storage"
	"forgeci/internal/trigger"
	"forgeci/internal/workflow"
)

var version = "dev"

func main() {
	var (
		addr         string
		workflowPath string
		logDir       string
		logFile      string
		secretsFile  string
		githubToken  string
		queueSize    int
		timeout      time.Duration
	)

	root := &cobra.Command{
		Use:           "forged",
		Short:         "forged serves the CI trigger surface",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var w io.Writer = os.Stdout
			if logFile != "" {
				rotating := storage.NewRotatingWriter(logFile)
				defer rotating.Close()
				w = io.MultiWriter(os.Stdout, rotating)
			}
			log := logging.NewServerLogger(w)

			wf, err := workflow.Load(workflowPath)
			if err != nil {
				return err
			}

			provider := secrets.NewProvider()
			if secretsFile != "" {
				provider, err = secrets.NewProviderFromFile(secretsFile)
				if err != nil {
					return err
				}
			}

			var reporter status.Reporter = status.Noop{}
			if githubToken == "" {
				githubToken = os.Getenv("FORGECI_GITHUB_TOKEN")
			}
			if githubToken != "" {
				reporter = status.NewGitHubReporter(cmd.Context(), githubToken)
			}

			store := storage.NewLogStore(logDir)
			factory := func(workspace string) *engine.Runner {
				runner := engine.NewRunner(workspace, log)
				runner.Secrets = provider
				runner.Reporter = reporter
				runner.Logs = store
				runner.DefaultTimeout = timeout
				return runner
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := trigger.NewServer(wf, factory, log, queueSize)
			srv.Start(ctx)

			httpServer := &http.Server{Addr: addr, Handler: srv.Router()}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			log.Info().Str("addr", addr).Str("workflow", wf.Name).Msg("forged listening")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	root.Flags().StringVar(&workflowPath, "workflow", "ci.yaml", "workflow file to serve")
	root.Flags().StringVar(&logDir, "log-dir", "./logs", "directory for step logs")
	root.Flags().StringVar(&logFile, "log-file", "", "rotating daemon log file")
	root.Flags().StringVar(&secretsFile, "secrets", "", "YAML file of secret values")
	root.Flags().StringVar(&githubToken, "github-token", "", "token for commit status reporting")
	root.Flags().IntVar(&queueSize, "queue", 16, "max runs waiting to execute")
	root.Flags().DurationVar(&timeout, "timeout", engine.DefaultStepTimeout, "default per-step timeout")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
