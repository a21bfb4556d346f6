package grcov

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/covrun/internal/application"
)

func TestAggregateArgs(t *testing.T) {
	var captured []string
	a := Aggregator{Exec: func(_ context.Context, args []string) error {
		captured = args
		return nil
	}}

	err := a.Aggregate(context.Background(), application.AggregateOptions{
		TargetDir:  "/work/crosvm/target",
		SourceRoot: "/work/crosvm",
		Output:     "/tmp/covrun-1/lcov.info",
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	got := strings.Join(captured, " ")
	want := "/work/crosvm/target -s /work/crosvm --ignore-not-existing --ignore /* -t lcov -o /tmp/covrun-1/lcov.info"
	if got != want {
		t.Fatalf("args mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestAggregatePropagatesFailure(t *testing.T) {
	toolErr := errors.New("exit status 1")
	a := Aggregator{Exec: func(context.Context, []string) error { return toolErr }}

	err := a.Aggregate(context.Background(), application.AggregateOptions{})
	if !errors.Is(err, toolErr) {
		t.Fatalf("expected wrapped tool error, got %v", err)
	}
}
