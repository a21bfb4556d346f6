package application

import (
	"context"
	"fmt"
)

// BadgeOptions controls badge generation from an existing report.
type BadgeOptions struct {
	ConfigPath  string
	ProfilePath string
}

// BadgeResult carries the coverage percentage to render.
type BadgeResult struct {
	Percent float64
}

// Badge computes the overall line coverage for badge rendering.
func (s *Service) Badge(ctx context.Context, opts BadgeOptions) (BadgeResult, error) {
	cfg, err := s.loadConfig(opts.ConfigPath)
	if err != nil {
		return BadgeResult{}, err
	}

	profile := s.resolveProfile(ctx, opts.ProfilePath, cfg)

	files, err := s.Parser.Parse(profile)
	if err != nil {
		return BadgeResult{}, fmt.Errorf("parse report: %w", err)
	}
	if len(files) == 0 {
		return BadgeResult{}, fmt.Errorf("report %s contains no file records", profile)
	}

	return BadgeResult{Percent: summarize(files).LinePercent()}, nil
}
