package freeze

import (
	"context"
	"testing"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/drive/types"
)

type fakeStrategy struct {
	name      string
	risk      int
	available bool
	succeeds  bool
	called    *[]string
}

func (f *fakeStrategy) Name() string        { return f.name }
func (f *fakeStrategy) Description() string { return f.name }
func (f *fakeStrategy) RiskLevel() int       { return f.risk }
func (f *fakeStrategy) CompatibleWith(types.FreezeReason) bool { return true }
func (f *fakeStrategy) IsAvailable(context.Context) bool       { return f.available }

func (f *fakeStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	*f.called = append(*f.called, f.name)
	if f.succeeds {
		return nil
	}
	return context.DeadlineExceeded
}

func newTestLogger(t *testing.T) logger.Logger {
	l, err := logger.New(logger.Config{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l
}

// TestMitigateAscendingRiskOrder asserts the stack tries strategies in
// ascending risk order and stops at the first success.
func TestMitigateAscendingRiskOrder(t *testing.T) {
	var called []string
	stack := &Stack{logger: newTestLogger(t)}
	stack.Register(&fakeStrategy{name: "high_risk", risk: 9, available: true, succeeds: true, called: &called})
	stack.Register(&fakeStrategy{name: "low_risk", risk: 2, available: true, succeeds: true, called: &called})
	stack.Register(&fakeStrategy{name: "mid_risk", risk: 5, available: true, succeeds: false, called: &called})

	result, err := stack.Mitigate(context.Background(), "/dev/sdz", types.FreezeUnknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != "low_risk" {
		t.Fatalf("winner = %q, want low_risk", result.Winner)
	}
	if len(called) != 1 || called[0] != "low_risk" {
		t.Fatalf("called = %v, want only [low_risk] (higher-risk strategies must not run)", called)
	}
}

// TestMitigateFallsThroughOnFailure asserts failed low-risk strategies
// are tried before succeeding higher-risk ones, in order.
func TestMitigateFallsThroughOnFailure(t *testing.T) {
	var called []string
	stack := &Stack{logger: newTestLogger(t)}
	stack.Register(&fakeStrategy{name: "low_risk", risk: 2, available: true, succeeds: false, called: &called})
	stack.Register(&fakeStrategy{name: "mid_risk", risk: 5, available: true, succeeds: true, called: &called})
	stack.Register(&fakeStrategy{name: "high_risk", risk: 9, available: true, succeeds: true, called: &called})

	result, err := stack.Mitigate(context.Background(), "/dev/sdz", types.FreezeUnknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != "mid_risk" {
		t.Fatalf("winner = %q, want mid_risk", result.Winner)
	}
	want := []string{"low_risk", "mid_risk"}
	if len(called) != len(want) || called[0] != want[0] || called[1] != want[1] {
		t.Fatalf("called = %v, want %v", called, want)
	}
}

// TestMitigateAllFail asserts a structured failure is returned with
// every attempt recorded once all strategies are exhausted.
func TestMitigateAllFail(t *testing.T) {
	var called []string
	stack := &Stack{logger: newTestLogger(t)}
	stack.Register(&fakeStrategy{name: "a", risk: 2, available: true, succeeds: false, called: &called})
	stack.Register(&fakeStrategy{name: "b", risk: 5, available: true, succeeds: false, called: &called})

	result, err := stack.Mitigate(context.Background(), "/dev/sdz", types.FreezeUnknown)
	if err == nil {
		t.Fatal("expected error when all strategies fail")
	}
	if result.Succeeded() {
		t.Fatal("result should not report success")
	}
	if len(result.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(result.Attempts))
	}
}

// TestMitigateSkipsUnavailable asserts unavailable strategies are
// skipped without being executed.
func TestMitigateSkipsUnavailable(t *testing.T) {
	var called []string
	stack := &Stack{logger: newTestLogger(t)}
	stack.Register(&fakeStrategy{name: "unavailable", risk: 2, available: false, succeeds: true, called: &called})
	stack.Register(&fakeStrategy{name: "available", risk: 5, available: true, succeeds: true, called: &called})

	result, err := stack.Mitigate(context.Background(), "/dev/sdz", types.FreezeUnknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Winner != "available" {
		t.Fatalf("winner = %q, want available", result.Winner)
	}
	if len(called) != 1 {
		t.Fatalf("called = %v, want exactly one call", called)
	}
}
