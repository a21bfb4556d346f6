package covfix

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCorrectArgs(t *testing.T) {
	var captured []string
	c := Corrector{Exec: func(_ context.Context, args []string) error {
		captured = args
		return nil
	}}

	if err := c.Correct(context.Background(), "/tmp/covrun-1/lcov.info", "/work/lcov.info"); err != nil {
		t.Fatalf("correct: %v", err)
	}

	got := strings.Join(captured, " ")
	if got != "-o /work/lcov.info /tmp/covrun-1/lcov.info" {
		t.Fatalf("unexpected args: %q", got)
	}
}

func TestCorrectPropagatesFailure(t *testing.T) {
	toolErr := errors.New("exit status 2")
	c := Corrector{Exec: func(context.Context, []string) error { return toolErr }}

	if err := c.Correct(context.Background(), "in", "out"); !errors.Is(err, toolErr) {
		t.Fatalf("expected wrapped tool error, got %v", err)
	}
}
