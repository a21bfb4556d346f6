// Package lcov implements a parser for the LCOV coverage report format
// produced by grcov and rewritten by rust-covfix.
package lcov

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/covrun/internal/domain"
	"github.com/felixgeelhaar/covrun/internal/pathutil"
)

// Parser reads LCOV reports into per-file line and branch counters.
type Parser struct{}

// Parse reads an LCOV report and returns file-level coverage.
func (p Parser) Parse(path string) (map[string]domain.FileCoverage, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	file, err := os.Open(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("open lcov file: %w", err)
	}
	defer file.Close()

	stats := make(map[string]domain.FileCoverage)
	scanner := bufio.NewScanner(file)

	var currentFile string
	var current domain.FileCoverage

	flush := func() {
		if currentFile != "" {
			stats[currentFile] = current
		}
		currentFile = ""
		current = domain.FileCoverage{}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "TN:"):
			// Test name - ignore

		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
			current = domain.FileCoverage{}

		case strings.HasPrefix(line, "DA:"):
			// DA:line_number,execution_count[,checksum]
			parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(parts) >= 2 {
				current.LinesTotal++
				count, _ := strconv.Atoi(parts[1])
				if count > 0 {
					current.LinesCovered++
				}
			}

		case strings.HasPrefix(line, "BRDA:"):
			// BRDA:line,block,branch,taken ("-" means never reached)
			parts := strings.Split(strings.TrimPrefix(line, "BRDA:"), ",")
			if len(parts) == 4 {
				current.BranchesTotal++
				if parts[3] != "-" {
					taken, _ := strconv.Atoi(parts[3])
					if taken > 0 {
						current.BranchesCovered++
					}
				}
			}

		case strings.HasPrefix(line, "LF:"):
			lf, _ := strconv.Atoi(strings.TrimPrefix(line, "LF:"))
			if lf > current.LinesTotal {
				current.LinesTotal = lf
			}

		case strings.HasPrefix(line, "LH:"):
			lh, _ := strconv.Atoi(strings.TrimPrefix(line, "LH:"))
			if lh > current.LinesCovered {
				current.LinesCovered = lh
			}

		case strings.HasPrefix(line, "BRF:"):
			brf, _ := strconv.Atoi(strings.TrimPrefix(line, "BRF:"))
			if brf > current.BranchesTotal {
				current.BranchesTotal = brf
			}

		case strings.HasPrefix(line, "BRH:"):
			brh, _ := strconv.Atoi(strings.TrimPrefix(line, "BRH:"))
			if brh > current.BranchesCovered {
				current.BranchesCovered = brh
			}

		case line == "end_of_record":
			flush()
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lcov file: %w", err)
	}

	// Handle reports that do not end with end_of_record
	flush()

	return stats, nil
}
