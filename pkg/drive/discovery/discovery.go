// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package discovery enumerates block devices and classifies their media
// type, reading identity, freeze state, and hidden-area presence.
package discovery

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

// lsblkJSON mirrors lsblk's --json output shape.
type lsblkJSON struct {
	BlockDevices []blockDevice `json:"blockdevices"`
}

type blockDevice struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Type       string        `json:"type"`
	Size       uint64        `json:"size"`
	Vendor     *string       `json:"vendor"`
	Model      *string       `json:"model"`
	Serial     *string       `json:"serial"`
	Mountpoint *string       `json:"mountpoint"`
	Rota       bool          `json:"rota"`
	Tran       *string       `json:"tran"`
	Children   []blockDevice `json:"children,omitempty"`
}

func (bd blockDevice) str(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

func (bd blockDevice) isMounted() bool {
	if bd.Mountpoint != nil && *bd.Mountpoint != "" {
		return true
	}
	for _, c := range bd.Children {
		if c.isMounted() {
			return true
		}
	}
	return false
}

// Detector enumerates and classifies drives, producing the read-only
// DriveInfo the orchestrator consumes.
type Detector struct {
	logger   logger.Logger
	lsblk    *tools.LsblkExecutor
	smartctl *tools.SmartctlExecutor
	hdparm   *tools.HdparmExecutor
	nvme     *tools.NvmeExecutor
	checker  *tools.Checker
}

// NewDetector builds a Detector from its tool wrappers and an availability
// checker (already populated via Checker.CheckAll).
func NewDetector(l logger.Logger, lsblk *tools.LsblkExecutor, smartctl *tools.SmartctlExecutor, hdparm *tools.HdparmExecutor, nvme *tools.NvmeExecutor, checker *tools.Checker) *Detector {
	return &Detector{logger: l, lsblk: lsblk, smartctl: smartctl, hdparm: hdparm, nvme: nvme, checker: checker}
}

// DiscoverAll enumerates every physical disk on the system.
func (d *Detector) DiscoverAll(ctx context.Context) ([]*types.DriveInfo, error) {
	start := time.Now()
	devices, err := d.listDisks(ctx)
	if err != nil {
		return nil, err
	}

	drives := make([]*types.DriveInfo, 0, len(devices))
	for _, bd := range devices {
		info, err := d.classify(ctx, bd)
		if err != nil {
			d.logger.Warn("failed to fully classify device", "device", bd.Path, "error", err)
		}
		drives = append(drives, info)
	}

	d.logger.Info("drive discovery complete", "count", len(drives), "duration", time.Since(start))
	return drives, nil
}

// Detect resolves a single device path into a DriveInfo, used by `wipe
// <device>` and `verify <device>`.
func (d *Detector) Detect(ctx context.Context, path string) (*types.DriveInfo, error) {
	output, err := d.lsblk.GetDevice(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.DeviceDiscoveryFailed).
			WithMetadata("device", path)
	}

	var parsed lsblkJSON
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.DeviceDiscoveryFailed)
	}
	if len(parsed.BlockDevices) == 0 {
		return nil, errors.New(errors.DeviceNotFound, "device not found").
			WithMetadata("device", path)
	}

	return d.classify(ctx, parsed.BlockDevices[0])
}

func (d *Detector) listDisks(ctx context.Context) ([]blockDevice, error) {
	output, err := d.lsblk.ListDisksWithChildren(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.DeviceDiscoveryFailed)
	}

	var parsed lsblkJSON
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.DeviceDiscoveryFailed)
	}
	return parsed.BlockDevices, nil
}

func (d *Detector) classify(ctx context.Context, bd blockDevice) (*types.DriveInfo, error) {
	info := &types.DriveInfo{
		Path:         bd.Path,
		Model:        bd.str(bd.Model),
		Serial:       bd.str(bd.Serial),
		SizeBytes:    bd.Size,
		Class:        classifyMedia(bd),
		IsMounted:    bd.isMounted(),
		DiscoveredAt: time.Now(),
	}

	// The system disk is the one holding the root mount, directly or
	// through one of its partitions.
	var holdsRoot func(b blockDevice) bool
	holdsRoot = func(b blockDevice) bool {
		if b.Mountpoint != nil && *b.Mountpoint == "/" {
			return true
		}
		for _, c := range b.Children {
			if holdsRoot(c) {
				return true
			}
		}
		return false
	}
	info.IsSystemDisk = holdsRoot(bd)

	if d.checker.IsAvailable("hdparm") && info.Class != types.MediaNVMe {
		d.enrichFromHdparm(ctx, info)
	}
	if d.checker.IsAvailable("smartctl") {
		d.enrichTemperature(ctx, info)
	}
	if d.checker.IsAvailable("nvme") && info.Class == types.MediaNVMe {
		d.enrichFromNVMe(ctx, info)
	}

	return info, nil
}

func classifyMedia(bd blockDevice) types.MediaClass {
	tran := ""
	if bd.Tran != nil {
		tran = *bd.Tran
	}
	switch tran {
	case "nvme":
		return types.MediaNVMe
	case "usb":
		if bd.Rota {
			return types.MediaSpinning
		}
		return types.MediaFlash
	}
	if strings.HasPrefix(bd.Path, "/dev/nvme") {
		return types.MediaNVMe
	}
	if bd.Rota {
		return types.MediaSpinning
	}
	return types.MediaFlash
}

// enrichFromHdparm reads the subset of `hdparm -I` output this package
// parses, with simple line scanning rather than a full ATA-identify decoder.
func (d *Detector) enrichFromHdparm(ctx context.Context, info *types.DriveInfo) {
	output, err := d.hdparm.Identify(ctx, info.Path)
	if err != nil {
		d.logger.Debug("hdparm identify failed", "device", info.Path, "error", err)
		return
	}
	text := string(output)

	if current, native, ok := parseHPASectors(text); ok && native > current {
		info.HPA = &types.HiddenArea{CurrentMaxSectors: current, NativeMaxSectors: native}
		info.Capabilities.HasHPA = true
	}

	lower := strings.ToLower(text)
	info.Capabilities.IsFrozen = strings.Contains(lower, "frozen")
	switch {
	case !info.Capabilities.IsFrozen:
		info.Capabilities.FreezeReason = types.FreezeNone
	case strings.Contains(lower, "locked"):
		info.Capabilities.FreezeReason = types.FreezeSecurityLock
	default:
		info.Capabilities.FreezeReason = types.FreezeBiosSetFrozen
	}

	info.Capabilities.SupportsSecureErase = strings.Contains(lower, "supported: enhanced erase") ||
		strings.Contains(lower, "security erase")
	info.Capabilities.IsSelfEncrypting = strings.Contains(lower, "encrypts all user data")
	info.Capabilities.SupportsTrim = strings.Contains(lower, "data set management") && strings.Contains(lower, "trim")
}

// parseHPASectors extracts "current" and "native" max sector counts from
// hdparm -I's freeform text, e.g.:
//
//	max sectors   = 1000215216/1000215216, HPA is disabled
func parseHPASectors(text string) (current, native uint64, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ToLower(line))
		if !strings.HasPrefix(line, "max sectors") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+1:])
		rest = strings.SplitN(rest, ",", 2)[0]
		parts := strings.Split(rest, "/")
		if len(parts) != 2 {
			continue
		}
		c, err1 := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		n, err2 := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err1 == nil && err2 == nil {
			return c, n, true
		}
	}
	return 0, 0, false
}

func (d *Detector) enrichTemperature(ctx context.Context, info *types.DriveInfo) {
	output, err := d.smartctl.GetAll(ctx, info.Path)
	if err != nil && len(output) == 0 {
		return
	}

	var parsed struct {
		Temperature struct {
			Current int `json:"current"`
		} `json:"temperature"`
	}
	if err := json.Unmarshal(output, &parsed); err == nil {
		info.TemperatureC = parsed.Temperature.Current
	}
}

func (d *Detector) enrichFromNVMe(ctx context.Context, info *types.DriveInfo) {
	output, err := d.nvme.IDCtrl(ctx, info.Path)
	if err != nil {
		d.logger.Debug("nvme id-ctrl failed", "device", info.Path, "error", err)
		return
	}

	var parsed struct {
		Sanicap uint32 `json:"sanicap"`
		Oacs    uint16 `json:"oacs"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return
	}
	info.Capabilities.SupportsSanitize = parsed.Sanicap != 0
	info.Capabilities.SupportsCryptoErase = parsed.Sanicap&0x4 != 0
	info.Capabilities.SupportsSecureErase = parsed.Oacs&0x2 != 0

	smart, err := d.nvme.SmartLog(ctx, info.Path)
	if err == nil {
		var smartParsed struct {
			Temperature int `json:"temperature"`
		}
		if err := json.Unmarshal(smart, &smartParsed); err == nil && smartParsed.Temperature > 0 {
			info.TemperatureC = kelvinToCelsius(smartParsed.Temperature)
		}
	}
}

func kelvinToCelsius(k int) int {
	if k > 200 {
		return k - 273
	}
	return k
}
