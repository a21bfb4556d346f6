package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/covrun/internal/domain"
)

// RecordOptions controls recording a run summary to history.
type RecordOptions struct {
	ConfigPath  string
	ProfilePath string
	Commit      string
	Branch      string
}

// Record parses the current report and appends its summary to history.
func (s *Service) Record(ctx context.Context, opts RecordOptions, store HistoryStore) error {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	profile := s.resolveProfile(ctx, opts.ProfilePath, cfg)

	files, err := s.Parser.Parse(profile)
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	summary := summarize(files)

	return store.Append(domain.HistoryEntry{
		Timestamp:     timeNow(),
		Commit:        opts.Commit,
		Branch:        opts.Branch,
		LinePercent:   summary.LinePercent(),
		BranchPercent: summary.BranchPercent(),
		LinesCovered:  summary.LinesCovered,
		LinesTotal:    summary.LinesTotal,
	})
}

// TrendOptions controls trend computation.
type TrendOptions struct {
	ConfigPath  string
	ProfilePath string
}

// TrendResult describes coverage movement against recorded history.
type TrendResult struct {
	Previous float64
	Current  float64
	Trend    domain.Trend
	Entries  []domain.HistoryEntry
}

// Trend compares the current report against the latest history entry.
func (s *Service) Trend(ctx context.Context, opts TrendOptions, store HistoryStore) (TrendResult, error) {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return TrendResult{}, err
	}

	profile := s.resolveProfile(ctx, opts.ProfilePath, cfg)

	files, err := s.Parser.Parse(profile)
	if err != nil {
		return TrendResult{}, fmt.Errorf("parse report: %w", err)
	}
	current := summarize(files).LinePercent()

	history, err := store.Load()
	if err != nil {
		return TrendResult{}, err
	}
	latest := history.LatestEntry()
	if latest == nil {
		return TrendResult{}, fmt.Errorf("no history recorded yet, run `covrun record` first")
	}

	return TrendResult{
		Previous: latest.LinePercent,
		Current:  current,
		Trend:    domain.CalculateTrend(latest.LinePercent, current),
		Entries:  history.Entries,
	}, nil
}
