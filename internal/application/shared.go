package application

import (
	"sort"

	"github.com/felixgeelhaar/covrun/internal/domain"
)

func summarize(files map[string]domain.FileCoverage) domain.RunSummary {
	return domain.Summarize(files)
}

func sortedFileResults(files map[string]domain.FileCoverage) []FileResult {
	results := make([]FileResult, 0, len(files))
	for file, cov := range files {
		results = append(results, FileResult{File: file, Coverage: cov})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})
	return results
}
