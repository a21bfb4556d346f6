package application

import (
	"context"
	"fmt"
)

// WatchOptions controls watch mode.
type WatchOptions struct {
	ConfigPath string
	Scope      string
	ExtraArgs  []string
	Output     string
}

// Watch runs the pipeline in a loop, re-running when source files change.
func (s *Service) Watch(ctx context.Context, opts WatchOptions, watcher FileWatcher, callback WatchCallback) error {
	root, err := s.Metadata.WorkspaceRoot(ctx)
	if err != nil {
		return err
	}

	if err := watcher.WatchDir(root); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	runOpts := RunOptions{
		ConfigPath: opts.ConfigPath,
		Scope:      opts.Scope,
		ExtraArgs:  opts.ExtraArgs,
		Output:     opts.Output,
	}

	runNumber := 1
	_, runErr := s.Run(ctx, runOpts)
	if callback != nil {
		callback(runNumber, runErr)
	}

	events := watcher.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			runNumber++
			_, runErr := s.Run(ctx, runOpts)
			if callback != nil {
				callback(runNumber, runErr)
			}
		}
	}
}
