package application

import (
	"context"
	"io"

	"github.com/felixgeelhaar/covrun/internal/domain"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config represents validated, application-ready configuration.
// Workspace policy (feature flags, excluded crates, artifact extensions)
// is data loaded from `.covrun.yaml`, not pipeline logic.
type Config struct {
	Version     int
	Features    []string
	Exclude     []string
	Artifacts   ArtifactsConfig
	Report      ReportConfig
	HistoryPath string
}

// ArtifactsConfig configures instrumentation artifact cleanup.
type ArtifactsConfig struct {
	Extensions []string
}

// ReportConfig configures the final report location.
type ReportConfig struct {
	Output string
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Version:     1,
		Artifacts:   ArtifactsConfig{Extensions: []string{"gcda"}},
		Report:      ReportConfig{Output: "lcov.info"},
		HistoryPath: ".covrun/history.json",
	}
}

type ConfigLoader interface {
	Load(path string) (Config, error)
	Exists(path string) (bool, error)
}

// BuildMetadata answers queries against the Cargo build system.
type BuildMetadata interface {
	// TargetDirectory returns the configured build output directory.
	TargetDirectory(ctx context.Context) (string, error)
	// WorkspaceRoot returns the workspace root directory.
	WorkspaceRoot(ctx context.Context) (string, error)
	// WorkspaceMembers returns the crate names of all workspace members.
	WorkspaceMembers(ctx context.Context) ([]string, error)
}

// ArtifactCleaner deletes stale instrumentation artifacts under a directory.
type ArtifactCleaner interface {
	// Clean removes files matching the given extensions under dir,
	// recursively, and returns how many were deleted. A missing dir is
	// not an error.
	Clean(dir string, extensions []string) (int, error)
}

// WorkspaceTestOptions describes a whole-workspace instrumented test run.
type WorkspaceTestOptions struct {
	Dir      string
	Features []string
	Exclude  []string
}

// ScopedTestOptions describes a test run restricted to one subdirectory.
// Args are forwarded to the test runner verbatim, nothing is injected.
type ScopedTestOptions struct {
	Dir  string
	Args []string
}

// TestRunner executes cargo test with coverage instrumentation enabled.
type TestRunner interface {
	RunWorkspace(ctx context.Context, opts WorkspaceTestOptions) error
	RunScoped(ctx context.Context, opts ScopedTestOptions) error
}

// AggregateOptions describes one grcov invocation.
type AggregateOptions struct {
	TargetDir  string
	SourceRoot string
	Output     string
}

// Aggregator merges instrumentation artifacts into an LCOV report.
type Aggregator interface {
	Aggregate(ctx context.Context, opts AggregateOptions) error
}

// Corrector post-processes an aggregated report to fix attribution
// inaccuracies, writing the corrected report to output.
type Corrector interface {
	Correct(ctx context.Context, input, output string) error
}

// ReportParser parses an LCOV report into per-file coverage.
type ReportParser interface {
	Parse(path string) (map[string]domain.FileCoverage, error)
}

// HistoryStore persists coverage summaries across runs.
type HistoryStore interface {
	Load() (domain.History, error)
	Append(entry domain.HistoryEntry) error
}

// FileResult is one report row.
type FileResult struct {
	File     string              `json:"file"`
	Coverage domain.FileCoverage `json:"coverage"`
}

// ReportResult is the analyzed content of a coverage report.
type ReportResult struct {
	ReportPath string            `json:"reportPath"`
	Files      []FileResult      `json:"files"`
	Summary    domain.RunSummary `json:"summary"`
	Delta      *float64          `json:"delta,omitempty"`
}

// Reporter renders a report result in the requested format.
type Reporter interface {
	Write(w io.Writer, result ReportResult, format OutputFormat) error
}

// FileWatcher watches source directories for changes.
type FileWatcher interface {
	WatchDir(root string) error
	Events(ctx context.Context) <-chan struct{}
}

// WatchCallback is invoked after each watch-triggered pipeline run.
type WatchCallback func(runNumber int, err error)
