// Package gitmeta answers lightweight git queries for history metadata.
package gitmeta

import (
	"context"
	"os/exec"
	"strings"
)

type Resolver struct {
	Dir string

	// Exec overrides git invocation (for testing).
	Exec func(ctx context.Context, dir string, args []string) ([]byte, error)
}

// Commit returns the abbreviated SHA of HEAD, or "" outside a repo.
func (r Resolver) Commit(ctx context.Context) string {
	out, err := r.run(ctx, []string{"rev-parse", "--short", "HEAD"})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Branch returns the current branch name, or "" outside a repo or on a
// detached HEAD.
func (r Resolver) Branch(ctx context.Context) string {
	out, err := r.run(ctx, []string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		return ""
	}
	return branch
}

func (r Resolver) run(ctx context.Context, args []string) ([]byte, error) {
	execFn := r.Exec
	if execFn == nil {
		execFn = runGit
	}
	return execFn(ctx, r.Dir, args)
}

func runGit(ctx context.Context, dir string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}
