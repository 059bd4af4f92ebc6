// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives one drive's erase session through its
// full lifecycle: hidden-area and freeze handling, dispatching the
// wiper, post-ops, statistical verification, and certificate assembly.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/certificate"
	"github.com/stratastor/eraser/pkg/drive/discovery"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
	"github.com/stratastor/eraser/pkg/freeze"
	"github.com/stratastor/eraser/pkg/hiddenarea"
	"github.com/stratastor/eraser/pkg/progress"
	"github.com/stratastor/eraser/pkg/verify"
	"github.com/stratastor/eraser/pkg/wipe"
	"github.com/stratastor/eraser/pkg/wiper"
)

// algorithmPriority is the auto-selection order for WipeConfig.Algorithm
// = AlgorithmSecureErase: lowest expected wall time first.
var algorithmPriority = []types.Algorithm{
	types.AlgorithmCryptoErase,
	types.AlgorithmSanitize,
	types.AlgorithmSecureErase,
	types.AlgorithmDoD5220,
	types.AlgorithmGutmann,
}

// Orchestrator wires the per-drive subsystems together behind the
// session state machine.
type Orchestrator struct {
	logger     logger.Logger
	sm         *StateMachine
	detector   *discovery.Detector
	hidden     *hiddenarea.Manager
	freezes    *freeze.Stack
	dispatcher *wiper.Dispatcher
	verifier   *verify.Verifier
	certs      *certificate.Assembler
	bus        *progress.Bus
}

// New builds an Orchestrator from its already-constructed subsystems.
func New(
	l logger.Logger,
	detector *discovery.Detector,
	hidden *hiddenarea.Manager,
	freezes *freeze.Stack,
	dispatcher *wiper.Dispatcher,
	verifier *verify.Verifier,
	certs *certificate.Assembler,
	bus *progress.Bus,
) *Orchestrator {
	if bus == nil {
		bus = progress.Default()
	}
	return &Orchestrator{
		logger:     l,
		sm:         NewStateMachine(l),
		detector:   detector,
		hidden:     hidden,
		freezes:    freezes,
		dispatcher: dispatcher,
		verifier:   verifier,
		certs:      certs,
		bus:        bus,
	}
}

// Run drives one drive record through Created..Closed, mutating rec in
// place and returning the assembled certificate. Run never returns an
// error for a drive-local failure: the failure is recorded on rec and
// reflected in the certificate's verified:false / error fields, per the
// policy that a session failure still produces a certificate. Run
// returns an error only for a nil record or when the certificate itself
// cannot be assembled.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, rec *types.DriveRecord, cfg types.WipeConfig) (*certificate.Certificate, error) {
	if rec == nil {
		return nil, errors.New(errors.OrchestratorSessionNotFound, "nil drive record")
	}

	stage := StageCreated
	rec.Status = types.DriveStatusInProgress
	rec.StartedAt = time.Now()

	var info *types.DriveInfo
	var hpaRemoved bool

	fail := func(stage Stage, err error) (*certificate.Certificate, error) {
		if hpaRemoved {
			o.restoreHidden(info)
			hpaRemoved = false
		}

		o.sm.Transition(sessionID, rec.Path, stage, StageFailed, err.Error())
		rec.Status = types.DriveStatusFailed
		if isCancellation(err) {
			rec.Status = types.DriveStatusAborted
		}
		rec.Error = err.Error()
		rec.EndedAt = time.Now()
		o.emit(sessionID, progress.StageTerminal, progress.LevelError, err.Error(), true)
		return o.assembleCertificate(sessionID, rec, cfg, nil, rec.Error)
	}

	var err error
	info, err = o.detector.Detect(ctx, rec.Path)
	if err != nil {
		return fail(stage, err)
	}

	if err := o.refuseUnsafe(info, cfg); err != nil {
		return fail(stage, err)
	}

	if err := o.sm.Transition(sessionID, rec.Path, stage, StagePrepared, "prepare"); err != nil {
		return fail(stage, err)
	}
	stage = StagePrepared
	o.emit(sessionID, progress.StagePrepare, progress.LevelInfo, "preparing drive", false)

	if err := o.prepare(ctx, info, cfg); err != nil {
		return fail(stage, err)
	}
	hpaRemoved = cfg.HandleHPADCO == types.HPATemporaryRemove && info.HPA != nil

	h, err := blockio.OpenWithConfig(info.Path, blockio.DefaultConfig(blockioMediaClass(info.Class)))
	if err != nil {
		return fail(stage, errors.Wrap(err, errors.DeviceDiscoveryFailed).WithMetadata("device", info.Path))
	}
	defer h.Close()

	if err := o.sm.Transition(sessionID, rec.Path, stage, StageWiping, "wipe"); err != nil {
		return fail(stage, err)
	}
	stage = StageWiping
	o.emit(sessionID, progress.StageWipe, progress.LevelInfo, "wiping", false)

	effective := o.resolveAlgorithm(info, cfg)
	wipeCfg := cfg
	wipeCfg.Algorithm = effective

	outcome, err := o.dispatcher.Wipe(ctx, h, info, wipeCfg, func(p wipe.PassProgress) {
		pct := float64(0)
		if p.BytesTotal > 0 {
			pct = float64(p.BytesDone) / float64(p.BytesTotal) * 100
		}
		o.bus.Emit(progress.Event{
			SessionID: sessionID, Stage: progress.StageWipe, Percent: pct,
			BytesDone: p.BytesDone, BytesTotal: p.BytesTotal,
			Message: p.PassName, Level: progress.LevelInfo, Timestamp: time.Now(),
		})
	})
	if err != nil {
		return fail(stage, err)
	}

	if err := o.sm.Transition(sessionID, rec.Path, stage, StagePostOps, "post-ops"); err != nil {
		return fail(stage, err)
	}
	stage = StagePostOps
	o.emit(sessionID, progress.StagePostOps, progress.LevelInfo, "running post-ops", false)
	if hpaRemoved {
		o.restoreHidden(info)
		hpaRemoved = false
	}

	if err := o.sm.Transition(sessionID, rec.Path, stage, StageVerifying, "verify"); err != nil {
		return fail(stage, err)
	}
	stage = StageVerifying
	o.emit(sessionID, progress.StageVerify, progress.LevelInfo, "verifying", false)

	var report *verify.Report
	if cfg.Verify {
		r, verr := o.runVerification(ctx, h, cfg)
		if verr != nil {
			return fail(stage, verr)
		}
		report = &r
		rec.VerificationScore = r.ConfidenceScore
		rec.Verified = r.Verified(cfg.MinConfidence)
		if !rec.Verified {
			err := errors.New(errors.VerificationBelowThreshold, "verification confidence below threshold").
				WithMetadata("got", fmt.Sprintf("%.2f", r.ConfidenceScore)).
				WithMetadata("required", fmt.Sprintf("%.2f", cfg.MinConfidence))
			return fail(stage, err)
		}
	}

	if err := o.sm.Transition(sessionID, rec.Path, stage, StageCertified, "certify"); err != nil {
		return fail(stage, err)
	}
	stage = StageCertified
	o.emit(sessionID, progress.StageCertify, progress.LevelInfo, "assembling certificate", false)

	cert, err := o.certs.Assemble(certificate.AssembleInput{
		SessionID:       sessionID,
		Drive:           info,
		Algorithm:       effective,
		PassesCompleted: outcome.PassesCompleted,
		Duration:        time.Since(rec.StartedAt),
		Report:          report,
		IncludeEnhanced: true,
		MinConfidence:   cfg.MinConfidence,
	})
	if err != nil {
		return fail(stage, err)
	}

	o.sm.Transition(sessionID, rec.Path, stage, StageClosed, "done")
	rec.Status = types.DriveStatusCompleted
	rec.EndedAt = time.Now()
	o.emit(sessionID, progress.StageTerminal, progress.LevelInfo, "complete", true)
	o.bus.Forget(sessionID)

	return cert, nil
}

// refuseUnsafe enforces the refuse-on-system/mounted-drive-unless-overridden
// rule that gates entry into the Prepared stage.
func (o *Orchestrator) refuseUnsafe(info *types.DriveInfo, cfg types.WipeConfig) error {
	if cfg.Force {
		return nil
	}
	if info.IsMounted {
		return errors.New(errors.DeviceMounted, "device is mounted").WithMetadata("device", info.Path)
	}
	if info.IsSystemDisk {
		return errors.New(errors.DeviceBusy, "refusing to wipe system disk without --force").
			WithMetadata("device", info.Path)
	}
	return nil
}

// prepare runs freeze mitigation and hidden-area removal, the two
// Created→Prepared side effects.
func (o *Orchestrator) prepare(ctx context.Context, info *types.DriveInfo, cfg types.WipeConfig) error {
	if cfg.FreezeMitigation && info.Capabilities.IsFrozen {
		if _, err := o.freezes.Mitigate(ctx, info.Path, info.Capabilities.FreezeReason); err != nil {
			return err
		}
	}

	if err := o.waitForTemperature(ctx, info, cfg); err != nil {
		return err
	}

	if cfg.HandleHPADCO == types.HPADetect || cfg.HandleHPADCO == "" {
		return nil
	}
	if info.HPA == nil && info.DCO == nil {
		return nil
	}
	permanent := cfg.HandleHPADCO == types.HPAPermanentRemove
	return o.hidden.RemoveAll(ctx, info.Path, info.HPA, info.DCO, permanent)
}

// waitForTemperature polls until the drive cools below the configured
// ceiling or max_wait_seconds elapses.
func (o *Orchestrator) waitForTemperature(ctx context.Context, info *types.DriveInfo, cfg types.WipeConfig) error {
	if !cfg.TemperatureMonitoring || cfg.MaxTemperatureCelsius <= 0 {
		return nil
	}
	deadline := time.Now().Add(time.Duration(cfg.MaxWaitSeconds) * time.Second)
	for info.TemperatureC > cfg.MaxTemperatureCelsius {
		if time.Now().After(deadline) {
			return errors.New(errors.TemperatureExceeded, "drive temperature did not fall below threshold in time").
				WithMetadata("device", info.Path).
				WithMetadata("temperature_c", fmt.Sprintf("%d", info.TemperatureC)).
				WithMetadata("max_c", fmt.Sprintf("%d", cfg.MaxTemperatureCelsius))
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.Cancelled)
		case <-time.After(5 * time.Second):
		}
		refreshed, err := o.detector.Detect(ctx, info.Path)
		if err == nil {
			info.TemperatureC = refreshed.TemperatureC
		}
	}
	return nil
}

// blockioMediaClass maps a drive's detected media class onto the I/O
// tuning class blockio.DefaultConfig understands.
func blockioMediaClass(class types.MediaClass) blockio.MediaClass {
	switch class {
	case types.MediaSpinning:
		return blockio.MediaHDD
	case types.MediaFlash:
		return blockio.MediaSSD
	case types.MediaNVMe:
		return blockio.MediaNVMe
	case types.MediaSMR:
		return blockio.MediaSMR
	case types.MediaOptane:
		return blockio.MediaOptane
	case types.MediaHybrid:
		return blockio.MediaHybrid
	case types.MediaEMMC:
		return blockio.MediaEMMC
	default:
		return blockio.MediaUnknown
	}
}

// resolveAlgorithm implements the Prepared→Wiping auto-selection rule:
// when AlgorithmSecureErase is requested, pick the first supported
// option in ascending expected-wall-time order.
func (o *Orchestrator) resolveAlgorithm(info *types.DriveInfo, cfg types.WipeConfig) types.Algorithm {
	if cfg.Algorithm != types.AlgorithmSecureErase {
		return cfg.Algorithm
	}
	for _, candidate := range algorithmPriority {
		switch candidate {
		case types.AlgorithmCryptoErase:
			if info.Capabilities.SupportsCryptoErase {
				return candidate
			}
		case types.AlgorithmSanitize:
			if info.Class == types.MediaNVMe && info.Capabilities.SupportsSanitize {
				return candidate
			}
		case types.AlgorithmSecureErase:
			if info.Capabilities.SupportsSecureErase {
				return candidate
			}
		default:
			return candidate
		}
	}
	return types.AlgorithmDoD5220
}

// restoreHidden restores a temporarily-removed HPA to its original
// CurrentMaxSectors bound (RemoveTemporary already moved the drive's
// max address to NativeMaxSectors). It runs on a context detached from
// the session's ctx so a cancelled or already-expired parent cannot
// skip the restore: the hidden area must come back on every exit path
// that removed it, success or failure.
func (o *Orchestrator) restoreHidden(info *types.DriveInfo) {
	restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := o.hidden.Restore(restoreCtx, info.Path, info.HPA.CurrentMaxSectors); err != nil {
		o.logger.Warn("hidden area restore failed", "device", info.Path, "error", err)
	}
}

// isCancellation reports whether err represents a cancelled session
// rather than an ordinary failure, so Run can record DriveStatusAborted
// instead of DriveStatusFailed.
func isCancellation(err error) bool {
	if code, ok := errors.GetCode(err); ok && code == errors.Cancelled {
		return true
	}
	return stderrors.Is(err, context.Canceled)
}

func (o *Orchestrator) runVerification(ctx context.Context, h *blockio.Handle, cfg types.WipeConfig) (verify.Report, error) {
	selfTest, err := o.verifier.SelfTest(ctx, h, 4<<20)
	if err != nil {
		return verify.Report{}, err
	}

	sample, err := o.verifier.Sample(ctx, h, cfg.SamplePercent)
	if err != nil {
		return verify.Report{}, err
	}

	report := o.verifier.Analyze(ctx, h, sample)
	report.SelfTest = selfTest
	report = verify.WithSelfTestScore(report, selfTest.Passed)
	return report, nil
}

func (o *Orchestrator) assembleCertificate(sessionID string, rec *types.DriveRecord, cfg types.WipeConfig, report *verify.Report, sessionError string) (*certificate.Certificate, error) {
	return o.certs.Assemble(certificate.AssembleInput{
		SessionID:      sessionID,
		Drive:          &types.DriveInfo{Path: rec.Path},
		Algorithm:      cfg.Algorithm,
		Duration:       rec.EndedAt.Sub(rec.StartedAt),
		Report:         report,
		MinConfidence:  cfg.MinConfidence,
		SessionError:   sessionError,
	})
}

func (o *Orchestrator) emit(sessionID string, stage progress.Stage, level progress.Level, message string, terminal bool) {
	o.bus.Emit(progress.Event{
		SessionID: sessionID,
		Stage:     stage,
		Level:     level,
		Message:   message,
		Terminal:  terminal,
		Timestamp: time.Now(),
	})
}
