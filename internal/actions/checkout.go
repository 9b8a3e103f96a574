package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Checkout acquires source at the triggering revision into the run
// workspace. The repository URL comes from with.repository, falling
// back to the event's clone URL; with no URL at all the workspace is
// used as-is, which is the local-CLI case.
type Checkout struct{}

func (c *Checkout) Run(ctx context.Context, actx *Context) (string, error) {
	url := actx.With["repository"]
	if url == "" {
		url = actx.CloneURL
	}
	if url == "" {
		return fmt.Sprintf("checkout: using existing workspace %s\n", actx.Workspace), nil
	}

	var out strings.Builder

	repo, err := gogit.PlainOpen(actx.Workspace)
	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		repo, err = gogit.PlainCloneContext(ctx, actx.Workspace, false, &gogit.CloneOptions{URL: url})
		if err != nil {
			return out.String(), fmt.Errorf("clone %s: %w", url, err)
		}
		fmt.Fprintf(&out, "checkout: cloned %s\n", url)
	case err != nil:
		return out.String(), fmt.Errorf("open workspace: %w", err)
	default:
		// Workspace already holds a clone from this run; reuse it.
		fmt.Fprintf(&out, "checkout: reusing clone in %s\n", actx.Workspace)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return out.String(), fmt.Errorf("worktree: %w", err)
	}

	sha := actx.With["sha"]
	if sha == "" {
		sha = actx.SHA
	}
	ref := actx.With["ref"]
	if ref == "" {
		ref = actx.Ref
	}

	switch {
	case sha != "":
		if err := wt.Checkout(&gogit.CheckoutOptions{Hash: plumbing.NewHash(sha)}); err != nil {
			return out.String(), fmt.Errorf("checkout %s: %w", sha, err)
		}
		fmt.Fprintf(&out, "checkout: at %s\n", sha)
	case ref != "":
		if err := wt.Checkout(&gogit.CheckoutOptions{Branch: refName(ref)}); err != nil {
			return out.String(), fmt.Errorf("checkout %s: %w", ref, err)
		}
		fmt.Fprintf(&out, "checkout: at %s\n", ref)
	default:
		fmt.Fprintf(&out, "checkout: at default branch\n")
	}
	return out.String(), nil
}

func refName(ref string) plumbing.ReferenceName {
	if strings.HasPrefix(ref, "refs/") {
		return plumbing.ReferenceName(ref)
	}
	return plumbing.NewBranchReferenceName(ref)
}
