package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/covrun/internal/application"
	"github.com/felixgeelhaar/covrun/internal/infrastructure/history"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// handleRun implements the run tool.
func (s *Server) handleRun(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	result, err := s.svc.Run(ctx, application.RunOptions{
		ConfigPath: coalesce(input.ConfigPath, s.config.ConfigPath),
		Scope:      input.Scope,
		ExtraArgs:  input.ExtraArgs,
		Output:     input.Output,
	})

	output := ToolOutput{
		Passed:     err == nil,
		ReportPath: result.ReportPath,
	}

	if err != nil {
		output.Error = err.Error()
		output.Summary = "Coverage run failed"
		return nil, output, nil
	}

	output.Summary = fmt.Sprintf("Corrected report written to %s (%d stale artifacts removed)",
		result.ReportPath, result.ArtifactsRemoved)
	return nil, output, nil
}

// handleReport implements the report tool.
func (s *Server) handleReport(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ReportInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	result, err := s.svc.ReportResult(ctx, application.ReportOptions{
		ConfigPath: coalesce(input.ConfigPath, s.config.ConfigPath),
		Profile:    coalesce(input.Profile, s.config.ProfilePath),
		Output:     application.OutputJSON,
	})

	output := ToolOutput{
		Passed:     err == nil,
		ReportPath: result.ReportPath,
		Files:      result.Files,
	}

	if err != nil {
		output.Error = err.Error()
		output.Summary = "Report analysis failed"
		return nil, output, nil
	}

	output.Summary = result.Summary.String()
	return nil, output, nil
}

// handleRecord implements the record tool.
func (s *Server) handleRecord(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, ToolOutput, error) {
	store := &history.FileStore{Path: coalesce(input.HistoryPath, s.config.HistoryPath)}

	err := s.svc.Record(ctx, application.RecordOptions{
		ConfigPath:  coalesce(input.ConfigPath, s.config.ConfigPath),
		ProfilePath: coalesce(input.Profile, s.config.ProfilePath),
		Commit:      input.Commit,
		Branch:      input.Branch,
	}, store)

	output := ToolOutput{
		Passed: err == nil,
	}

	if err != nil {
		output.Error = err.Error()
		output.Summary = "Failed to record coverage"
	} else {
		output.Summary = "Coverage recorded to history"
	}

	return nil, output, nil
}
