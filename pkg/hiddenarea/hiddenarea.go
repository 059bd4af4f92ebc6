// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package hiddenarea detects and removes Host Protected Areas and Device
// Configuration Overlays ahead of a wipe, and restores any temporary
// removal before the session closes.
package hiddenarea

import (
	"context"
	"strconv"
	"strings"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

// Manager detects and removes HPA/DCO via hdparm, restoring temporary
// removals on success or failure.
type Manager struct {
	logger logger.Logger
	hdparm *tools.HdparmExecutor
}

// NewManager builds a Manager from the hdparm executor shared with
// pkg/drive/discovery.
func NewManager(l logger.Logger, hdparm *tools.HdparmExecutor) *Manager {
	return &Manager{logger: l, hdparm: hdparm}
}

// DetectHPA re-probes the drive's current/native max sectors, returning
// nil if no HPA is present.
func (m *Manager) DetectHPA(ctx context.Context, path string) (*types.HiddenArea, error) {
	return m.detect(ctx, path)
}

// DetectDCO returns the same reading as DetectHPA: the max-sector
// discrepancy parsed from hdparm -I. It does not read the DCO identify
// page (hdparm --dco-identify), so a DCO restriction is not reported
// separately from an HPA.
func (m *Manager) DetectDCO(ctx context.Context, path string) (*types.HiddenArea, error) {
	return m.detect(ctx, path)
}

func (m *Manager) detect(ctx context.Context, path string) (*types.HiddenArea, error) {
	output, err := m.hdparm.Identify(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.DeviceDiscoveryFailed).WithMetadata("device", path)
	}
	current, native, ok := parseMaxSectors(string(output))
	if !ok || native <= current {
		return nil, nil
	}
	return &types.HiddenArea{CurrentMaxSectors: current, NativeMaxSectors: native}, nil
}

// RemoveTemporary issues a volatile SET-MAX to the native sector count.
// The change reverts at the next power cycle, and must be reversed
// explicitly via Restore before the session closes.
func (m *Manager) RemoveTemporary(ctx context.Context, path string, area types.HiddenArea) error {
	m.logger.Info("removing HPA temporarily", "device", path, "native_max", area.NativeMaxSectors)
	_, err := m.hdparm.SetMaxSectorsHPA(ctx, path, area.NativeMaxSectors, true)
	if err != nil {
		return errors.Wrap(err, errors.HiddenAreaRemoveFailed).WithMetadata("device", path)
	}
	return nil
}

// RemovePermanent issues a non-volatile SET-MAX, which survives power
// cycles and cannot be reverted by Restore.
func (m *Manager) RemovePermanent(ctx context.Context, path string, area types.HiddenArea) error {
	m.logger.Info("removing HPA permanently", "device", path, "native_max", area.NativeMaxSectors)
	_, err := m.hdparm.SetMaxSectorsHPA(ctx, path, area.NativeMaxSectors, false)
	if err != nil {
		return errors.Wrap(err, errors.HiddenAreaRemoveFailed).WithMetadata("device", path)
	}
	return nil
}

// Restore issues a volatile SET-MAX back to the originally-observed
// current max sector count. Must be called on both the success and
// failure branches of any session that used RemoveTemporary.
func (m *Manager) Restore(ctx context.Context, path string, originalSectors uint64) error {
	m.logger.Info("restoring HPA", "device", path, "original_max", originalSectors)
	_, err := m.hdparm.SetMaxSectorsHPA(ctx, path, originalSectors, true)
	if err != nil {
		return errors.Wrap(err, errors.HiddenAreaRestoreFailed).WithMetadata("device", path)
	}
	return nil
}

// RemoveDCO issues a DCO-RESTORE, which is irreversible within the same
// session: it re-exposes the drive's full native feature set and
// address space in one step.
func (m *Manager) RemoveDCO(ctx context.Context, path string) error {
	m.logger.Info("removing DCO", "device", path)
	_, err := m.hdparm.DisableDCO(ctx, path)
	if err != nil {
		return errors.Wrap(err, errors.DCORemoveFailed).WithMetadata("device", path)
	}
	return nil
}

// RemoveAll removes DCO before HPA: when both HPA and DCO are present
// and permanent removal is requested, DCO is removed first
// since restoring it may re-expose a larger native address space that
// changes what HPA removal should target.
func (m *Manager) RemoveAll(ctx context.Context, path string, hpa, dco *types.HiddenArea, permanent bool) error {
	if dco != nil {
		if err := m.RemoveDCO(ctx, path); err != nil {
			return err
		}
	}
	if hpa == nil {
		return nil
	}
	if permanent {
		return m.RemovePermanent(ctx, path, *hpa)
	}
	return m.RemoveTemporary(ctx, path, *hpa)
}

// parseMaxSectors extracts "current" and "native" max sector counts from
// hdparm -I's freeform text, e.g.:
//
//	max sectors   = 1000215216/1000215216, HPA is disabled
func parseMaxSectors(text string) (current, native uint64, ok bool) {
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
