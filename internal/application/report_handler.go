package application

import (
	"context"
	"fmt"
)

// ReportOptions controls analysis of an existing coverage report.
type ReportOptions struct {
	ConfigPath string
	Profile    string
	Output     OutputFormat
	// HistoryStore, when set, adds a delta against the latest recorded run.
	HistoryStore HistoryStore
}

// Report analyzes an existing LCOV report and writes it to s.Out.
func (s *Service) Report(ctx context.Context, opts ReportOptions) error {
	result, err := s.ReportResult(ctx, opts)
	if err != nil {
		return err
	}
	return s.Reporter.Write(s.Out, result, opts.Output)
}

// ReportResult analyzes an existing LCOV report without rendering it.
func (s *Service) ReportResult(ctx context.Context, opts ReportOptions) (ReportResult, error) {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return ReportResult{}, err
	}

	profile := s.resolveProfile(ctx, opts.Profile, cfg)

	files, err := s.Parser.Parse(profile)
	if err != nil {
		return ReportResult{}, fmt.Errorf("parse report: %w", err)
	}
	if len(files) == 0 {
		return ReportResult{}, fmt.Errorf("report %s contains no file records", profile)
	}

	result := ReportResult{
		ReportPath: profile,
		Files:      sortedFileResults(files),
		Summary:    summarize(files),
	}

	if opts.HistoryStore != nil {
		history, err := opts.HistoryStore.Load()
		if err != nil {
			return ReportResult{}, err
		}
		if latest := history.LatestEntry(); latest != nil {
			delta := result.Summary.LinePercent() - latest.LinePercent
			result.Delta = &delta
		}
	}

	return result, nil
}
