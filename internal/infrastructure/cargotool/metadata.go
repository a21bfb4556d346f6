package cargotool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
)

// MetadataResolver answers build system queries via `cargo metadata`.
// The metadata document is fetched once and cached; every query in a run
// hits the same snapshot.
type MetadataResolver struct {
	// Dir is the directory to query from. Empty means the process cwd.
	Dir string
	// Exec overrides metadata fetching (for testing). It must return the
	// raw `cargo metadata` JSON document.
	Exec func(ctx context.Context, dir string) ([]byte, error)

	mu     sync.Mutex
	cached *metadataDoc
	err    error
	done   bool
}

type metadataDoc struct {
	TargetDirectory string            `json:"target_directory"`
	WorkspaceRoot   string            `json:"workspace_root"`
	WorkspaceMems   []string          `json:"workspace_members"`
	Packages        []metadataPackage `json:"packages"`
}

type metadataPackage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TargetDirectory returns the configured build output directory.
func (r *MetadataResolver) TargetDirectory(ctx context.Context) (string, error) {
	doc, err := r.metadata(ctx)
	if err != nil {
		return "", err
	}
	if doc.TargetDirectory == "" {
		return "", errors.New("cargo metadata reported no target directory")
	}
	return doc.TargetDirectory, nil
}

// WorkspaceRoot returns the workspace root directory.
func (r *MetadataResolver) WorkspaceRoot(ctx context.Context) (string, error) {
	doc, err := r.metadata(ctx)
	if err != nil {
		return "", err
	}
	if doc.WorkspaceRoot == "" {
		return "", errors.New("cargo metadata reported no workspace root")
	}
	return doc.WorkspaceRoot, nil
}

// WorkspaceMembers returns the crate names of all workspace members.
func (r *MetadataResolver) WorkspaceMembers(ctx context.Context) ([]string, error) {
	doc, err := r.metadata(ctx)
	if err != nil {
		return nil, err
	}
	memberIDs := make(map[string]struct{}, len(doc.WorkspaceMems))
	for _, id := range doc.WorkspaceMems {
		memberIDs[id] = struct{}{}
	}
	names := make([]string, 0, len(doc.WorkspaceMems))
	for _, pkg := range doc.Packages {
		if _, ok := memberIDs[pkg.ID]; ok {
			names = append(names, pkg.Name)
		}
	}
	return names, nil
}

// Reset clears the cached metadata, forcing a fresh query on next call.
func (r *MetadataResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.err = nil
	r.done = false
}

func (r *MetadataResolver) metadata(ctx context.Context) (*metadataDoc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return r.cached, r.err
	}

	execFn := r.Exec
	if execFn == nil {
		execFn = fetchMetadata
	}
	raw, err := execFn(ctx, r.Dir)
	if err != nil {
		r.cached, r.err = nil, fmt.Errorf("cargo metadata: %w", err)
		r.done = true
		return r.cached, r.err
	}

	var doc metadataDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.cached, r.err = nil, fmt.Errorf("decode cargo metadata: %w", err)
		r.done = true
		return r.cached, r.err
	}

	r.cached, r.err = &doc, nil
	r.done = true
	return r.cached, nil
}

func fetchMetadata(ctx context.Context, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "cargo", "metadata", "--format-version", "1", "--no-deps")
	cmd.Dir = dir
	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(errOut.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out.Bytes(), nil
}
