// Package artifacts removes stale per-compilation-unit coverage data files
// left behind by a previous instrumented build.
package artifacts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Cleaner deletes instrumentation artifacts under a build output directory.
type Cleaner struct{}

// Clean walks dir recursively and removes every file whose name ends with
// one of the given extensions (without leading dot). It returns how many
// files were removed. A missing dir is treated as already clean, which
// makes cleanup idempotent.
func (Cleaner) Clean(dir string, extensions []string) (int, error) {
	if len(extensions) == 0 {
		return 0, nil
	}
	suffixes := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		suffixes = append(suffixes, "."+strings.TrimPrefix(ext, "."))
	}

	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				if err := os.Remove(path); err != nil {
					return err
				}
				removed++
				break
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
