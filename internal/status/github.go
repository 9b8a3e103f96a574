package status

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// GitHubReporter posts commit statuses through the GitHub API.
type GitHubReporter struct {
	client *github.Client
}

// NewGitHubReporter builds a reporter authenticated with a repository
// token.
func NewGitHubReporter(ctx context.Context, token string) *GitHubReporter {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubReporter{client: github.NewClient(oauth2.NewClient(ctx, ts))}
}

func (r *GitHubReporter) SetStatus(ctx context.Context, s CommitStatus) error {
	if s.Owner == "" || s.Repo == "" || s.SHA == "" {
		return fmt.Errorf("commit status requires owner, repo, and sha")
	}
	state := string(s.State)
	repoStatus := &github.RepoStatus{
		State:       github.String(state),
		Context:     github.String(s.Context),
		Description: github.String(s.Description),
	}
	if s.TargetURL != "" {
		repoStatus.TargetURL = github.String(s.TargetURL)
	}
	_, _, err := r.client.Repositories.CreateStatus(ctx, s.Owner, s.Repo, s.SHA, repoStatus)
	if err != nil {
		return fmt.Errorf("create commit status: %w", err)
	}
	return nil
}
