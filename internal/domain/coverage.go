package domain

import "fmt"

// FileCoverage holds line and branch coverage counters for one source file.
type FileCoverage struct {
	LinesCovered    int `json:"linesCovered"`
	LinesTotal      int `json:"linesTotal"`
	BranchesCovered int `json:"branchesCovered"`
	BranchesTotal   int `json:"branchesTotal"`
}

// LinePercent returns line coverage as a percentage (0 when no lines).
func (c FileCoverage) LinePercent() float64 {
	return percent(c.LinesCovered, c.LinesTotal)
}

// BranchPercent returns branch coverage as a percentage (0 when no branches).
func (c FileCoverage) BranchPercent() float64 {
	return percent(c.BranchesCovered, c.BranchesTotal)
}

// RunSummary aggregates coverage counters across a whole report.
type RunSummary struct {
	Files           int `json:"files"`
	LinesCovered    int `json:"linesCovered"`
	LinesTotal      int `json:"linesTotal"`
	BranchesCovered int `json:"branchesCovered"`
	BranchesTotal   int `json:"branchesTotal"`
}

// Summarize folds per-file coverage into a single run summary.
func Summarize(files map[string]FileCoverage) RunSummary {
	s := RunSummary{Files: len(files)}
	for _, f := range files {
		s.LinesCovered += f.LinesCovered
		s.LinesTotal += f.LinesTotal
		s.BranchesCovered += f.BranchesCovered
		s.BranchesTotal += f.BranchesTotal
	}
	return s
}

// LinePercent returns overall line coverage as a percentage.
func (s RunSummary) LinePercent() float64 {
	return percent(s.LinesCovered, s.LinesTotal)
}

// BranchPercent returns overall branch coverage as a percentage.
func (s RunSummary) BranchPercent() float64 {
	return percent(s.BranchesCovered, s.BranchesTotal)
}

// String returns a short human-readable summary.
func (s RunSummary) String() string {
	return fmt.Sprintf("%.1f%% lines, %.1f%% branches across %d files",
		s.LinePercent(), s.BranchPercent(), s.Files)
}

func percent(covered, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(covered) / float64(total) * 100
}
