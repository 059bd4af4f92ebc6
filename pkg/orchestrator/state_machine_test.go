package orchestrator

import (
	"testing"

	"github.com/stratastor/logger"
)

func testLogger(t *testing.T) logger.Logger {
	l, err := logger.New(logger.Config{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l
}

// TestStateMachineHappyPath walks the full Created..Closed chain.
func TestStateMachineHappyPath(t *testing.T) {
	sm := NewStateMachine(testLogger(t))
	chain := []Stage{StageCreated, StagePrepared, StageWiping, StagePostOps, StageVerifying, StageCertified, StageClosed}
	for i := 0; i < len(chain)-1; i++ {
		if err := sm.Transition("sess", "/dev/sda", chain[i], chain[i+1], "test"); err != nil {
			t.Fatalf("transition %s -> %s: unexpected error: %v", chain[i], chain[i+1], err)
		}
	}
}

// TestStateMachineFailedReachableFromMidStages asserts every stage
// from Created through Verifying can transition directly to Failed.
func TestStateMachineFailedReachableFromMidStages(t *testing.T) {
	sm := NewStateMachine(testLogger(t))
	for _, s := range []Stage{StageCreated, StagePrepared, StageWiping, StagePostOps, StageVerifying} {
		if !sm.CanTransition(s, StageFailed) {
			t.Fatalf("expected %s -> Failed to be valid", s)
		}
	}
}

// TestStateMachineRejectsSkippingStages asserts the machine refuses an
// edge that skips intermediate stages.
func TestStateMachineRejectsSkippingStages(t *testing.T) {
	sm := NewStateMachine(testLogger(t))
	if sm.CanTransition(StageCreated, StageWiping) {
		t.Fatal("expected Created -> Wiping to be invalid")
	}
	err := sm.Transition("sess", "/dev/sda", StageCreated, StageWiping, "skip")
	if err == nil {
		t.Fatal("expected an error for an invalid transition")
	}
}

// TestStateMachineClosedIsTerminal asserts Closed has no valid outgoing
// transitions.
func TestStateMachineClosedIsTerminal(t *testing.T) {
	sm := NewStateMachine(testLogger(t))
	if next := sm.GetNextStages(StageClosed); len(next) != 0 {
		t.Fatalf("expected no valid transitions from Closed, got %v", next)
	}
}

// TestStateMachineCertifiedOnlyReachesClosed asserts Certified cannot
// transition back to Failed (a certificate has already been assembled
// by that point).
func TestStateMachineCertifiedOnlyReachesClosed(t *testing.T) {
	sm := NewStateMachine(testLogger(t))
	if sm.CanTransition(StageCertified, StageFailed) {
		t.Fatal("expected Certified -> Failed to be invalid")
	}
	if !sm.CanTransition(StageCertified, StageClosed) {
		t.Fatal("expected Certified -> Closed to be valid")
	}
}
