package cargotool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/covrun/internal/application"
)

// coverageRustflags is the compiler flag bundle for instrumented test
// builds: profiling instrumentation, a single codegen unit, no
// optimization, no overflow checks, dead code linked, and abort-on-panic
// test binaries so counters stay attributable.
const coverageRustflags = "-Zprofile -Ccodegen-units=1 -Copt-level=0 -Clink-dead-code -Coverflow-checks=off -Zpanic_abort_tests"

// Runner invokes `cargo test` with coverage instrumentation enabled.
type Runner struct {
	// Exec overrides command execution (for testing).
	Exec func(ctx context.Context, dir string, env []string, args []string) error
}

// InstrumentationEnv returns the environment overrides applied to every
// instrumented test invocation.
func InstrumentationEnv() []string {
	return []string{
		"CARGO_INCREMENTAL=0",
		"RUSTFLAGS=" + coverageRustflags,
		"RUSTDOCFLAGS=" + coverageRustflags,
	}
}

// RunWorkspace runs the whole workspace with the configured feature set,
// excluded crates, no-fail-fast, and single-threaded test execution.
func (r Runner) RunWorkspace(ctx context.Context, opts application.WorkspaceTestOptions) error {
	args := []string{"test"}
	if len(opts.Features) > 0 {
		args = append(args, "--features", strings.Join(opts.Features, " "))
	}
	args = append(args, "--workspace")
	for _, crate := range opts.Exclude {
		args = append(args, "--exclude", crate)
	}
	args = append(args, "--no-fail-fast", "--", "--test-threads=1")

	return r.run(ctx, opts.Dir, args)
}

// RunScoped runs tests from within one subdirectory, forwarding the
// caller's arguments verbatim.
func (r Runner) RunScoped(ctx context.Context, opts application.ScopedTestOptions) error {
	if _, err := os.Stat(opts.Dir); err != nil {
		return fmt.Errorf("scope directory %s: %w", opts.Dir, err)
	}
	args := append([]string{"test"}, opts.Args...)
	return r.run(ctx, opts.Dir, args)
}

func (r Runner) run(ctx context.Context, dir string, args []string) error {
	execFn := r.Exec
	if execFn == nil {
		execFn = runCargo
	}
	env := InstrumentationEnv()
	fmt.Fprintf(os.Stderr, "running cargo args: %v env: %v\n", args, env)
	if err := execFn(ctx, dir, env, args); err != nil {
		return fmt.Errorf("cargo test failed: %w", err)
	}
	return nil
}

func runCargo(ctx context.Context, dir string, env []string, args []string) error {
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
