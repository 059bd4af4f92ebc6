package orchestrator

import (
	"context"
	"testing"

	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

// TestResolveAlgorithmTieBreakOrder asserts the auto-selection order
// crypto-erase < sanitize < hardware secure-erase < DoD-3, taking the
// first capability the drive actually supports.
func TestResolveAlgorithmTieBreakOrder(t *testing.T) {
	o := &Orchestrator{}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmSecureErase}

	cases := []struct {
		name string
		info *types.DriveInfo
		want types.Algorithm
	}{
		{
			name: "crypto erase wins when supported",
			info: &types.DriveInfo{Class: types.MediaNVMe, Capabilities: types.Capabilities{
				SupportsCryptoErase: true, SupportsSanitize: true, SupportsSecureErase: true,
			}},
			want: types.AlgorithmCryptoErase,
		},
		{
			name: "sanitize wins over secure-erase on nvme without crypto erase",
			info: &types.DriveInfo{Class: types.MediaNVMe, Capabilities: types.Capabilities{
				SupportsSanitize: true, SupportsSecureErase: true,
			}},
			want: types.AlgorithmSanitize,
		},
		{
			name: "sanitize is skipped on non-nvme even if flagged",
			info: &types.DriveInfo{Class: types.MediaSpinning, Capabilities: types.Capabilities{
				SupportsSanitize: true, SupportsSecureErase: true,
			}},
			want: types.AlgorithmSecureErase,
		},
		{
			name: "falls back to DoD-3 when no hardware method is supported",
			info: &types.DriveInfo{Class: types.MediaSpinning, Capabilities: types.Capabilities{}},
			want: types.AlgorithmDoD5220,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := o.resolveAlgorithm(c.info, cfg); got != c.want {
				t.Fatalf("resolveAlgorithm() = %v, want %v", got, c.want)
			}
		})
	}
}

// TestResolveAlgorithmPassesThroughExplicitChoice asserts an explicit,
// non-auto algorithm is never overridden.
func TestResolveAlgorithmPassesThroughExplicitChoice(t *testing.T) {
	o := &Orchestrator{}
	info := &types.DriveInfo{Class: types.MediaNVMe, Capabilities: types.Capabilities{SupportsCryptoErase: true}}
	cfg := types.WipeConfig{Algorithm: types.AlgorithmGutmann}

	if got := o.resolveAlgorithm(info, cfg); got != types.AlgorithmGutmann {
		t.Fatalf("resolveAlgorithm() = %v, want %v (explicit choice must not be overridden)", got, types.AlgorithmGutmann)
	}
}

// TestRefuseUnsafeBlocksMountedAndSystemDisk asserts the Prepared-stage
// entry gate refuses mounted/system drives unless Force is set.
func TestRefuseUnsafeBlocksMountedAndSystemDisk(t *testing.T) {
	o := &Orchestrator{}

	mounted := &types.DriveInfo{Path: "/dev/sda", IsMounted: true}
	if err := o.refuseUnsafe(mounted, types.WipeConfig{}); err == nil {
		t.Fatal("expected refusal for a mounted drive")
	}
	if err := o.refuseUnsafe(mounted, types.WipeConfig{Force: true}); err != nil {
		t.Fatalf("expected Force to override mounted refusal, got %v", err)
	}

	systemDisk := &types.DriveInfo{Path: "/dev/sda", IsSystemDisk: true}
	if err := o.refuseUnsafe(systemDisk, types.WipeConfig{}); err == nil {
		t.Fatal("expected refusal for the system disk")
	}

	clean := &types.DriveInfo{Path: "/dev/sdb"}
	if err := o.refuseUnsafe(clean, types.WipeConfig{}); err != nil {
		t.Fatalf("expected no refusal for an unmounted non-system drive, got %v", err)
	}
}

// TestIsCancellationDetectsBothRepresentations asserts isCancellation
// recognizes both a raw context.Canceled and the errors.Cancelled kind
// wrapping it, since waitForTemperature produces the latter.
func TestIsCancellationDetectsBothRepresentations(t *testing.T) {
	if !isCancellation(context.Canceled) {
		t.Fatal("expected context.Canceled to be detected as a cancellation")
	}
	if !isCancellation(errors.Wrap(context.Canceled, errors.Cancelled)) {
		t.Fatal("expected an errors.Cancelled-wrapped error to be detected as a cancellation")
	}
	if isCancellation(errors.New(errors.IOError, "disk is on fire")) {
		t.Fatal("expected an ordinary I/O error not to be treated as a cancellation")
	}
}
