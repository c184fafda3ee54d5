// Package github posts the pipeline outcome as a commit status. Reporting
// is strictly informational: a reporting failure never changes the
// pipeline's exit code.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v81/github"
)

// CommitRef identifies the commit a pipeline run tested, parsed from the
// OWNER/REPO@SHA form of --github-status.
type CommitRef struct {
	Owner string
	Repo  string
	SHA   string
}

func ParseCommitRef(s string) (CommitRef, error) {
	ownerRepo, sha, ok := strings.Cut(s, "@")
	if !ok || sha == "" {
		return CommitRef{}, fmt.Errorf("invalid commit ref %q (must be OWNER/REPO@SHA)", s)
	}
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return CommitRef{}, fmt.Errorf("invalid commit ref %q (must be OWNER/REPO@SHA)", s)
	}
	return CommitRef{Owner: owner, Repo: repo, SHA: sha}, nil
}

// StatusForExitCode maps the pipeline exit code onto GitHub's commit status
// states.
func StatusForExitCode(code int) (state, description string) {
	switch code {
	case 0:
		return "success", "pipeline passed"
	case 1:
		return "failure", "a pipeline gate failed"
	default:
		return "error", "pipeline did not run to completion"
	}
}

// ReportStatus creates the commit status for a finished run.
func (c *Client) ReportStatus(ctx context.Context, ref CommitRef, statusContext string, exitCode int) error {
	state, description := StatusForExitCode(exitCode)
	status := github.RepoStatus{
		State:       github.Ptr(state),
		Description: github.Ptr(description),
		Context:     github.Ptr(statusContext),
	}
	_, _, err := c.Client.Repositories.CreateStatus(ctx, ref.Owner, ref.Repo, ref.SHA, status)
	if err != nil {
		return fmt.Errorf("create commit status for %s/%s@%s: %w", ref.Owner, ref.Repo, ref.SHA, err)
	}
	return nil
}
