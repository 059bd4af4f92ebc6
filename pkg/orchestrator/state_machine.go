// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/errors"
)

// Stage is one step of a drive's erase lifecycle within a WipeSession.
//
//	Created → Prepared → Wiping → PostOps → Verifying → Certified → Closed
//	              ↓          ↓         ↓          ↓
//	            Failed ← ← ← ← ← ← ← ← ←
//
// Failed is reachable from every stage from Created through Verifying;
// Closed is reachable from both Certified and Failed, since a failed
// drive still gets a certificate recording the failure.
type Stage string

const (
	StageCreated    Stage = "created"
	StagePrepared   Stage = "prepared"
	StageWiping     Stage = "wiping"
	StagePostOps    Stage = "post_ops"
	StageVerifying  Stage = "verifying"
	StageCertified  Stage = "certified"
	StageClosed     Stage = "closed"
	StageFailed     Stage = "failed"
)

// StateMachine validates the Stage transitions above before the
// Orchestrator applies them to a DriveRecord.
type StateMachine struct {
	logger      logger.Logger
	transitions map[Stage][]Stage
}

// NewStateMachine builds a StateMachine with the stage graph wired.
func NewStateMachine(l logger.Logger) *StateMachine {
	sm := &StateMachine{logger: l, transitions: make(map[Stage][]Stage)}
	sm.defineTransitions()
	return sm
}

func (sm *StateMachine) defineTransitions() {
	sm.transitions[StageCreated] = []Stage{StagePrepared, StageFailed}
	sm.transitions[StagePrepared] = []Stage{StageWiping, StageFailed}
	sm.transitions[StageWiping] = []Stage{StagePostOps, StageFailed}
	sm.transitions[StagePostOps] = []Stage{StageVerifying, StageFailed}
	sm.transitions[StageVerifying] = []Stage{StageCertified, StageFailed}
	sm.transitions[StageCertified] = []Stage{StageClosed}
	sm.transitions[StageFailed] = []Stage{StageClosed}
	sm.transitions[StageClosed] = []Stage{}
}

// CanTransition reports whether oldStage -> newStage is a valid edge.
func (sm *StateMachine) CanTransition(oldStage, newStage Stage) bool {
	next, ok := sm.transitions[oldStage]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == newStage {
			return true
		}
	}
	return false
}

// Transition validates and logs a stage change, returning an error with
// OrchestratorInvalidTransition if the edge is not in the graph.
func (sm *StateMachine) Transition(sessionID, drive string, oldStage, newStage Stage, reason string) error {
	if !sm.CanTransition(oldStage, newStage) {
		return errors.New(errors.OrchestratorInvalidTransition,
			fmt.Sprintf("invalid stage transition: %s -> %s", oldStage, newStage)).
			WithMetadata("session_id", sessionID).
			WithMetadata("drive", drive).
			WithMetadata("old_stage", string(oldStage)).
			WithMetadata("new_stage", string(newStage))
	}

	sm.logger.Info("drive stage transition",
		"session_id", sessionID,
		"drive", drive,
		"old_stage", oldStage,
		"new_stage", newStage,
		"reason", reason,
		"at", time.Now())
	return nil
}

// GetNextStages returns a copy of the valid next stages from current.
func (sm *StateMachine) GetNextStages(current Stage) []Stage {
	next, ok := sm.transitions[current]
	if !ok {
		return []Stage{}
	}
	out := make([]Stage, len(next))
	copy(out, next)
	return out
}
