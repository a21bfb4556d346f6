package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/covrun/internal/application"
	"github.com/felixgeelhaar/covrun/internal/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mockService implements the Service interface for testing.
type mockService struct {
	runResult    application.RunResult
	runErr       error
	runOpts      application.RunOptions
	reportResult application.ReportResult
	reportErr    error
	recordErr    error
	recordOpts   application.RecordOptions
	trendResult  application.TrendResult
	trendErr     error
	detectResult application.DetectResult
	detectErr    error
}

func (m *mockService) Run(ctx context.Context, opts application.RunOptions) (application.RunResult, error) {
	m.runOpts = opts
	return m.runResult, m.runErr
}

func (m *mockService) ReportResult(ctx context.Context, opts application.ReportOptions) (application.ReportResult, error) {
	return m.reportResult, m.reportErr
}

func (m *mockService) Record(ctx context.Context, opts application.RecordOptions, store application.HistoryStore) error {
	m.recordOpts = opts
	return m.recordErr
}

func (m *mockService) Trend(ctx context.Context, opts application.TrendOptions, store application.HistoryStore) (application.TrendResult, error) {
	return m.trendResult, m.trendErr
}

func (m *mockService) Detect(ctx context.Context, opts application.DetectOptions) (application.DetectResult, error) {
	return m.detectResult, m.detectErr
}

func TestNew(t *testing.T) {
	svc := &mockService{}
	cfg := Config{
		ConfigPath:  "custom.yaml",
		HistoryPath: "custom/history.json",
		ProfilePath: "custom/lcov.info",
	}

	server := New(svc, cfg)

	if server == nil {
		t.Fatal("expected non-nil server")
	}
	if server.config.ConfigPath != cfg.ConfigPath {
		t.Errorf("expected ConfigPath %q, got %q", cfg.ConfigPath, server.config.ConfigPath)
	}
	if server.config.HistoryPath != cfg.HistoryPath {
		t.Errorf("expected HistoryPath %q, got %q", cfg.HistoryPath, server.config.HistoryPath)
	}
	if server.config.ProfilePath != cfg.ProfilePath {
		t.Errorf("expected ProfilePath %q, got %q", cfg.ProfilePath, server.config.ProfilePath)
	}
}

func TestNewDefaults(t *testing.T) {
	server := New(&mockService{}, Config{})

	defaults := DefaultConfig()
	if server.config.ConfigPath != defaults.ConfigPath {
		t.Errorf("expected default ConfigPath %q, got %q", defaults.ConfigPath, server.config.ConfigPath)
	}
	if server.config.HistoryPath != defaults.HistoryPath {
		t.Errorf("expected default HistoryPath %q, got %q", defaults.HistoryPath, server.config.HistoryPath)
	}
	if server.config.ProfilePath != defaults.ProfilePath {
		t.Errorf("expected default ProfilePath %q, got %q", defaults.ProfilePath, server.config.ProfilePath)
	}
}

func TestBuildServerRegistersHandlers(t *testing.T) {
	server := New(&mockService{}, Config{}).buildServer()

	if server == nil {
		t.Fatal("expected non-nil protocol server")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ConfigPath != ".covrun.yaml" {
		t.Errorf("expected ConfigPath '.covrun.yaml', got %q", cfg.ConfigPath)
	}
	if cfg.HistoryPath != ".covrun/history.json" {
		t.Errorf("expected HistoryPath '.covrun/history.json', got %q", cfg.HistoryPath)
	}
	if cfg.ProfilePath != "lcov.info" {
		t.Errorf("expected ProfilePath 'lcov.info', got %q", cfg.ProfilePath)
	}
}

func TestCoalesce(t *testing.T) {
	if got := coalesce("custom", "default"); got != "custom" {
		t.Errorf("expected custom, got %q", got)
	}
	if got := coalesce("", "default"); got != "default" {
		t.Errorf("expected default, got %q", got)
	}
	if got := coalesce("", ""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestHandleRun(t *testing.T) {
	svc := &mockService{
		runResult: application.RunResult{ReportPath: "/w/lcov.info", ArtifactsRemoved: 3},
	}
	server := New(svc, DefaultConfig())

	_, output, err := server.handleRun(context.Background(), nil, RunInput{Scope: "devices"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Passed {
		t.Error("expected passed output")
	}
	if output.ReportPath != "/w/lcov.info" {
		t.Errorf("expected report path forwarded, got %q", output.ReportPath)
	}
	if !strings.Contains(output.Summary, "3 stale artifacts removed") {
		t.Errorf("unexpected summary: %q", output.Summary)
	}
	if svc.runOpts.Scope != "devices" {
		t.Errorf("expected scope forwarded, got %q", svc.runOpts.Scope)
	}
	if svc.runOpts.ConfigPath != ".covrun.yaml" {
		t.Errorf("expected default config path, got %q", svc.runOpts.ConfigPath)
	}
}

func TestHandleRunError(t *testing.T) {
	svc := &mockService{runErr: errors.New("cargo test failed")}
	server := New(svc, DefaultConfig())

	_, output, err := server.handleRun(context.Background(), nil, RunInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Passed {
		t.Error("expected failed output")
	}
	if output.Error == "" {
		t.Error("expected error message in output")
	}
}

func TestHandleReport(t *testing.T) {
	svc := &mockService{
		reportResult: application.ReportResult{
			ReportPath: "lcov.info",
			Files: []application.FileResult{
				{File: "src/lib.rs", Coverage: domain.FileCoverage{LinesCovered: 8, LinesTotal: 10}},
			},
			Summary: domain.RunSummary{Files: 1, LinesCovered: 8, LinesTotal: 10},
		},
	}
	server := New(svc, DefaultConfig())

	_, output, err := server.handleReport(context.Background(), nil, ReportInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Passed {
		t.Error("expected passed output")
	}
	if len(output.Files) != 1 {
		t.Fatalf("expected file results forwarded, got %d", len(output.Files))
	}
	if !strings.Contains(output.Summary, "80.0%") {
		t.Errorf("expected line percentage in summary: %q", output.Summary)
	}
}

func TestHandleRecord(t *testing.T) {
	svc := &mockService{}
	server := New(svc, DefaultConfig())

	_, output, err := server.handleRecord(context.Background(), nil, RecordInput{Commit: "abc1234"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Passed {
		t.Error("expected passed output")
	}
	if output.Summary != "Coverage recorded to history" {
		t.Errorf("expected success summary, got %q", output.Summary)
	}
	if svc.recordOpts.Commit != "abc1234" {
		t.Errorf("expected commit forwarded, got %q", svc.recordOpts.Commit)
	}
}

func TestHandleTrendResource(t *testing.T) {
	svc := &mockService{
		trendResult: application.TrendResult{Previous: 80, Current: 85, Trend: domain.Trend{Direction: domain.TrendUp, Delta: 5}},
	}
	server := New(svc, DefaultConfig())

	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "covrun://trend"}}
	result, err := server.handleTrendResource(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected one content item, got %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != "covrun://trend" {
		t.Errorf("expected request URI echoed, got %q", content.URI)
	}
	if content.MIMEType != "application/json" {
		t.Errorf("expected JSON MIME type, got %q", content.MIMEType)
	}
	if !strings.Contains(content.Text, "85") {
		t.Errorf("expected trend data in content: %s", content.Text)
	}
}

func TestHandleConfigResource(t *testing.T) {
	svc := &mockService{
		detectResult: application.DetectResult{
			Config:  application.DefaultConfig(),
			Members: []string{"core", "devices"},
		},
	}
	server := New(svc, DefaultConfig())

	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "covrun://config"}}
	result, err := server.handleConfigResource(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatal("expected non-empty content")
	}
	if !strings.Contains(result.Contents[0].Text, "devices") {
		t.Errorf("expected member crates in content: %s", result.Contents[0].Text)
	}
}

func TestHandleConfigResourceError(t *testing.T) {
	svc := &mockService{detectErr: errors.New("could not find Cargo.toml")}
	server := New(svc, DefaultConfig())

	req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "covrun://config"}}
	if _, err := server.handleConfigResource(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
}
