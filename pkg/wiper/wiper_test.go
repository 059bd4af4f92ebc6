package wiper

import (
	"context"
	"os"
	"testing"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/rng"
)

func testLogger(t *testing.T) logger.Logger {
	l, err := logger.New(logger.Config{LogLevel: "debug"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return l
}

func loopback(t *testing.T, size int64) *blockio.Handle {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "wiper-test-*")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("failed to truncate temp file: %v", err)
	}
	f.Close()

	h, err := blockio.Open(f.Name())
	if err != nil {
		t.Fatalf("failed to open loopback handle: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

// TestOverwriteWiperFallsThroughWithoutHardware asserts the plain
// overwrite wiper runs the configured algorithm directly when no
// hardware method is available on the drive.
func TestOverwriteWiperFallsThroughWithoutHardware(t *testing.T) {
	h := loopback(t, 1<<16)
	info := &types.DriveInfo{Path: "/dev/loop-test", Class: types.MediaSpinning, SizeBytes: h.Size()}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmZero}

	w := &overwriteWiper{logger: testLogger(t), source: rng.NewCryptoSource()}
	outcome, err := w.Wipe(context.Background(), h, info, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Method != MethodOverwriteDoD {
		t.Fatalf("method = %q, want %q (zero algorithm maps to DoD-family method label)", outcome.Method, MethodOverwriteDoD)
	}
	if outcome.PassesCompleted != 1 {
		t.Fatalf("passes = %d, want 1", outcome.PassesCompleted)
	}
}

// TestRAIDWiperRefusesWithoutForce asserts the RAID wiper refuses
// outright when Force is not set, regardless of the underlying class.
func TestRAIDWiperRefusesWithoutForce(t *testing.T) {
	h := loopback(t, 1<<16)
	info := &types.DriveInfo{Path: "/dev/loop-test", Class: types.MediaRAID, SizeBytes: h.Size()}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmZero, Force: false}

	delegate := &overwriteWiper{logger: testLogger(t), source: rng.NewCryptoSource()}
	w := &raidWiper{logger: testLogger(t), delegate: delegate}

	_, err := w.Wipe(context.Background(), h, info, cfg, nil)
	if err == nil {
		t.Fatal("expected refusal error when Force is false")
	}
}

// TestRAIDWiperProceedsWithForce asserts the RAID wiper delegates to
// the underlying wiper once Force is set, tagging the outcome method.
func TestRAIDWiperProceedsWithForce(t *testing.T) {
	h := loopback(t, 1<<16)
	info := &types.DriveInfo{Path: "/dev/loop-test", Class: types.MediaRAID, SizeBytes: h.Size()}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmZero, Force: true}

	delegate := &overwriteWiper{logger: testLogger(t), source: rng.NewCryptoSource()}
	w := &raidWiper{logger: testLogger(t), delegate: delegate}

	outcome, err := w.Wipe(context.Background(), h, info, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Method != MethodRAIDScrubFallthrough {
		t.Fatalf("method = %q, want %q", outcome.Method, MethodRAIDScrubFallthrough)
	}
}

// TestDispatcherRoutesByMediaClass asserts the dispatcher picks the
// wiper registered for the drive's media class.
func TestDispatcherRoutesByMediaClass(t *testing.T) {
	h := loopback(t, 1<<16)
	info := &types.DriveInfo{Path: "/dev/loop-test", Class: types.MediaSMR, SizeBytes: h.Size()}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmZero}

	d := NewDispatcher(testLogger(t), rng.NewCryptoSource(), nil, nil)
	outcome, err := d.Wipe(context.Background(), h, info, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Method != MethodZoneResetFill {
		t.Fatalf("method = %q, want %q (SMR class must dispatch to the zone-reset wiper)", outcome.Method, MethodZoneResetFill)
	}
}
