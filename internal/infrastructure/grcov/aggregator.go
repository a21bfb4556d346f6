// Package grcov invokes the grcov aggregation tool, which merges
// per-compilation-unit instrumentation artifacts into a single LCOV report.
package grcov

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/covrun/internal/application"
)

// Aggregator wraps one grcov invocation.
type Aggregator struct {
	// Exec overrides command execution (for testing).
	Exec func(ctx context.Context, args []string) error
}

// Aggregate runs grcov over the build output directory, scoping source
// resolution to the workspace root and skipping records that point at
// absolute paths or files that no longer exist.
func (a Aggregator) Aggregate(ctx context.Context, opts application.AggregateOptions) error {
	args := []string{
		opts.TargetDir,
		"-s", opts.SourceRoot,
		"--ignore-not-existing",
		"--ignore", "/*",
		"-t", "lcov",
		"-o", opts.Output,
	}

	execFn := a.Exec
	if execFn == nil {
		execFn = runGrcov
	}
	fmt.Fprintf(os.Stderr, "running grcov args: %v\n", args)
	if err := execFn(ctx, args); err != nil {
		return fmt.Errorf("grcov failed: %w", err)
	}
	return nil
}

func runGrcov(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "grcov", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
