// Package pathutil provides utilities for safe path handling.
package pathutil

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for an empty path.
	ErrEmptyPath = errors.New("path is empty")
	// ErrNullBytes is returned for a path containing null bytes.
	ErrNullBytes = errors.New("path contains null bytes")
)

// ValidatePath cleans a path and rejects obviously unsafe input.
// Symlinks are resolved when the path exists; a path that does not exist
// yet is returned cleaned so new files can still be created.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "\x00") {
		return "", ErrNullBytes
	}

	realPath, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return cleaned, nil
	}
	return realPath, nil
}
