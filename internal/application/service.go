package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// timeNow is a variable for test injection.
var timeNow = time.Now

// Service wires the pipeline stages together. Each stage is an interface so
// the pipeline can be exercised against fakes.
type Service struct {
	ConfigLoader ConfigLoader
	Metadata     BuildMetadata
	Cleaner      ArtifactCleaner
	Tests        TestRunner
	Aggregator   Aggregator
	Corrector    Corrector
	Parser       ReportParser
	Reporter     Reporter
	Out          io.Writer

	// TempDir overrides per-run temp directory creation (for testing).
	TempDir func() (string, error)
}

// RunOptions controls one coverage pipeline run.
type RunOptions struct {
	ConfigPath string
	// Scope restricts the test run to one workspace subdirectory.
	// Empty means whole-workspace mode.
	Scope string
	// ExtraArgs are forwarded verbatim to cargo test in scoped mode.
	ExtraArgs []string
	// Output overrides the configured final report path.
	Output string
	// KeepTemp leaves the intermediate report on disk.
	KeepTemp bool
}

// RunResult describes a completed pipeline run.
type RunResult struct {
	ReportPath string
	// TempReportPath is set only when the run kept its temp directory;
	// otherwise the intermediate report is gone by the time Run returns.
	TempReportPath   string
	ArtifactsRemoved int
}

// Run drives the five pipeline stages in order: resolve the build output
// directory, clean stale artifacts, run instrumented tests, aggregate, and
// correct the report. The first failing stage aborts the run; there is no
// retry or partial result.
func (s *Service) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return RunResult{}, err
	}

	targetDir, err := s.Metadata.TargetDirectory(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("resolve target directory: %w", err)
	}
	root, err := s.Metadata.WorkspaceRoot(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	removed, err := s.Cleaner.Clean(filepath.Join(targetDir, "debug"), cfg.Artifacts.Extensions)
	if err != nil {
		return RunResult{}, fmt.Errorf("clean stale artifacts: %w", err)
	}

	if opts.Scope != "" {
		err = s.Tests.RunScoped(ctx, ScopedTestOptions{
			Dir:  filepath.Join(root, opts.Scope),
			Args: opts.ExtraArgs,
		})
	} else {
		err = s.Tests.RunWorkspace(ctx, WorkspaceTestOptions{
			Dir:      root,
			Features: cfg.Features,
			Exclude:  cfg.Exclude,
		})
	}
	if err != nil {
		// Coverage from a failing suite is not trustworthy; no report.
		return RunResult{}, fmt.Errorf("instrumented test run: %w", err)
	}

	tempDir, err := s.makeTempDir()
	if err != nil {
		return RunResult{}, err
	}
	if !opts.KeepTemp {
		defer os.RemoveAll(tempDir)
	}
	tempReport := filepath.Join(tempDir, "lcov.info")

	if err := s.Aggregator.Aggregate(ctx, AggregateOptions{
		TargetDir:  targetDir,
		SourceRoot: root,
		Output:     tempReport,
	}); err != nil {
		return RunResult{}, fmt.Errorf("aggregate coverage: %w", err)
	}

	final := opts.Output
	if final == "" {
		final = cfg.Report.Output
	}
	if !filepath.IsAbs(final) {
		final = filepath.Join(root, final)
	}
	if err := s.Corrector.Correct(ctx, tempReport, final); err != nil {
		return RunResult{}, fmt.Errorf("correct report: %w", err)
	}

	result := RunResult{
		ReportPath:       final,
		ArtifactsRemoved: removed,
	}
	// The temp report only survives the deferred cleanup with KeepTemp.
	if opts.KeepTemp {
		result.TempReportPath = tempReport
	}
	return result, nil
}

// CleanOptions controls a standalone artifact cleanup.
type CleanOptions struct {
	ConfigPath string
}

// CleanResult reports what a standalone cleanup removed.
type CleanResult struct {
	Dir     string
	Removed int
}

// Clean runs only the artifact cleanup stage.
func (s *Service) Clean(ctx context.Context, opts CleanOptions) (CleanResult, error) {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return CleanResult{}, err
	}
	targetDir, err := s.Metadata.TargetDirectory(ctx)
	if err != nil {
		return CleanResult{}, fmt.Errorf("resolve target directory: %w", err)
	}
	dir := filepath.Join(targetDir, "debug")
	removed, err := s.Cleaner.Clean(dir, cfg.Artifacts.Extensions)
	if err != nil {
		return CleanResult{}, err
	}
	return CleanResult{Dir: dir, Removed: removed}, nil
}

// DetectOptions controls workspace detection for init.
type DetectOptions struct{}

// DetectResult carries the detected config plus workspace member names for
// the init wizard to offer as exclusion candidates.
type DetectResult struct {
	Config  Config
	Members []string
}

// Detect queries the build system and returns a default config for the
// current workspace. Fails when run outside a valid checkout.
func (s *Service) Detect(ctx context.Context, _ DetectOptions) (DetectResult, error) {
	if _, err := s.Metadata.WorkspaceRoot(ctx); err != nil {
		return DetectResult{}, fmt.Errorf("not inside a cargo workspace: %w", err)
	}
	members, err := s.Metadata.WorkspaceMembers(ctx)
	if err != nil {
		return DetectResult{}, err
	}
	return DetectResult{Config: DefaultConfig(), Members: members}, nil
}

func (s *Service) loadConfig(path string) (Config, error) {
	if path == "" {
		path = ".covrun.yaml"
	}
	exists, err := s.ConfigLoader.Exists(path)
	if err != nil {
		return Config{}, err
	}
	if !exists {
		return DefaultConfig(), nil
	}
	return s.ConfigLoader.Load(path)
}

// resolveProfile picks the report file to analyze. An explicit path is
// used as given; the configured fallback is resolved against the
// workspace root so report commands find the file a run wrote,
// regardless of the process working directory.
func (s *Service) resolveProfile(ctx context.Context, explicit string, cfg Config) string {
	if explicit != "" {
		return explicit
	}
	profile := cfg.Report.Output
	if filepath.IsAbs(profile) {
		return profile
	}
	root, err := s.Metadata.WorkspaceRoot(ctx)
	if err != nil {
		// Outside a workspace the cwd-relative fallback is the best bet.
		return profile
	}
	return filepath.Join(root, profile)
}

func (s *Service) makeTempDir() (string, error) {
	if s.TempDir != nil {
		return s.TempDir()
	}
	return os.MkdirTemp("", "covrun-")
}
