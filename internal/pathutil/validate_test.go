package pathutil

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "empty path", path: "", wantErr: ErrEmptyPath},
		{name: "null byte", path: "lcov\x00.info", wantErr: ErrNullBytes},
		{name: "plain relative path", path: "lcov.info"},
		{name: "path with dot segments", path: "./target/../lcov.info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidatePath(tc.path)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != filepath.Clean(tc.path) {
				t.Fatalf("expected cleaned path %q, got %q", filepath.Clean(tc.path), got)
			}
		})
	}
}

func TestValidatePathResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	got, err := ValidatePath(dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got == "" {
		t.Fatal("expected resolved path")
	}
}
