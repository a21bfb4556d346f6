// Package mcp provides Model Context Protocol server implementation for covrun.
package mcp

import (
	"context"

	"github.com/felixgeelhaar/covrun/internal/application"
)

// Service defines the application operations needed by MCP.
// This interface allows for easy mocking in tests.
type Service interface {
	// Tools (actions that may have side effects)
	Run(ctx context.Context, opts application.RunOptions) (application.RunResult, error)
	ReportResult(ctx context.Context, opts application.ReportOptions) (application.ReportResult, error)
	Record(ctx context.Context, opts application.RecordOptions, store application.HistoryStore) error

	// Resources (read-only queries)
	Trend(ctx context.Context, opts application.TrendOptions, store application.HistoryStore) (application.TrendResult, error)
	Detect(ctx context.Context, opts application.DetectOptions) (application.DetectResult, error)
}

// Config holds MCP server configuration.
type Config struct {
	ConfigPath  string // Path to .covrun.yaml (default: ".covrun.yaml")
	HistoryPath string // Path to history file (default: ".covrun/history.json")
	ProfilePath string // Path to the corrected LCOV report (default: "lcov.info")
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{
		ConfigPath:  ".covrun.yaml",
		HistoryPath: ".covrun/history.json",
		ProfilePath: "lcov.info",
	}
}

// RunInput defines the input parameters for the run tool.
type RunInput struct {
	ConfigPath string   `json:"configPath,omitempty" jsonschema:"Path to .covrun.yaml config file"`
	Scope      string   `json:"scope,omitempty" jsonschema:"Workspace subdirectory to test (empty for the whole workspace)"`
	ExtraArgs  []string `json:"extraArgs,omitempty" jsonschema:"Additional cargo test arguments for scoped runs"`
	Output     string   `json:"output,omitempty" jsonschema:"Final report path overriding the configured one"`
}

// ReportInput defines the input parameters for the report tool.
type ReportInput struct {
	ConfigPath string `json:"configPath,omitempty" jsonschema:"Path to .covrun.yaml config file"`
	Profile    string `json:"profile,omitempty" jsonschema:"Path to an existing LCOV report"`
}

// RecordInput defines the input parameters for the record tool.
type RecordInput struct {
	ConfigPath  string `json:"configPath,omitempty" jsonschema:"Path to .covrun.yaml config file"`
	Profile     string `json:"profile,omitempty" jsonschema:"Path to an existing LCOV report"`
	HistoryPath string `json:"historyPath,omitempty" jsonschema:"Path to history file"`
	Commit      string `json:"commit,omitempty" jsonschema:"Git commit SHA"`
	Branch      string `json:"branch,omitempty" jsonschema:"Git branch name"`
}

// ToolOutput represents the common output structure for tools.
type ToolOutput struct {
	Passed     bool                     `json:"passed"`
	Summary    string                   `json:"summary,omitempty"`
	ReportPath string                   `json:"reportPath,omitempty"`
	Files      []application.FileResult `json:"files,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// coalesce returns value if non-empty, otherwise fallback.
func coalesce(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
