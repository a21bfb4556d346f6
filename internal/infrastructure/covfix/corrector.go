// Package covfix invokes rust-covfix, which fixes line attribution
// inaccuracies in aggregated LCOV reports.
package covfix

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Corrector wraps one rust-covfix invocation.
type Corrector struct {
	// Exec overrides command execution (for testing).
	Exec func(ctx context.Context, args []string) error
}

// Correct reads the aggregated report at input and writes the corrected
// report to output. This is the final pipeline stage; its success is the
// success criterion for the whole run.
func (c Corrector) Correct(ctx context.Context, input, output string) error {
	args := []string{"-o", output, input}

	execFn := c.Exec
	if execFn == nil {
		execFn = runCovfix
	}
	fmt.Fprintf(os.Stderr, "running rust-covfix args: %v\n", args)
	if err := execFn(ctx, args); err != nil {
		return fmt.Errorf("rust-covfix failed: %w", err)
	}
	return nil
}

func runCovfix(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "rust-covfix", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
