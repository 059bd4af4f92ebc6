// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/internal/command"
)

// HdparmExecutor wraps hdparm, the ATA-layer tool used for identity
// reads, HPA/DCO inspection and removal, security-freeze detection and
// unfreeze, and the ATA Security Erase / Enhanced Secure Erase commands.
type HdparmExecutor struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	path     string
}

// NewHdparmExecutor creates a new hdparm executor. useSudo is almost
// always true: every hdparm subcommand this type exposes requires raw
// ATA command access.
func NewHdparmExecutor(l logger.Logger, path string, useSudo bool) *HdparmExecutor {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 30 * time.Second
	return &HdparmExecutor{logger: l, executor: executor, path: path}
}

// Identify returns the raw `-I` identify-device output: model, serial,
// native/current max sectors (HPA), DCO presence, and security/freeze
// state. pkg/drive/discovery and pkg/hiddenarea parse parts of it.
func (h *HdparmExecutor) Identify(ctx context.Context, device string) ([]byte, error) {
	h.logger.Debug("reading ATA identify", "device", device)
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "-I", device)
}

// SecurityFreezeStatus re-reads -I and is a thin alias kept for call-site
// clarity in the freeze-mitigation stack.
func (h *HdparmExecutor) SecurityFreezeStatus(ctx context.Context, device string) ([]byte, error) {
	return h.Identify(ctx, device)
}

// SetMaxSectorsHPA temporarily or permanently lowers/restores the
// reported max sector count. volatile=true makes the change survive only
// until the next power cycle; volatile=false makes it permanent and
// irreversible.
func (h *HdparmExecutor) SetMaxSectorsHPA(ctx context.Context, device string, sectors uint64, volatile bool) ([]byte, error) {
	flag := "--yes-i-know-what-i-am-doing"
	args := []string{"-N"}
	if volatile {
		args = append(args, formatHPAArg(sectors, false))
	} else {
		args = append(args, formatHPAArg(sectors, true))
	}
	args = append(args, flag, device)
	h.logger.Info("setting HPA max sectors", "device", device, "sectors", sectors, "volatile", volatile)
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, args...)
}

// DisableDCO issues `hdparm --dco-restore` to remove a Device
// Configuration Overlay, restoring native capacity.
func (h *HdparmExecutor) DisableDCO(ctx context.Context, device string) ([]byte, error) {
	h.logger.Info("restoring DCO", "device", device)
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--dco-restore", "--yes-i-know-what-i-am-doing", device)
}

// DCOIdentify reads the DCO identify page (`--dco-identify`).
func (h *HdparmExecutor) DCOIdentify(ctx context.Context, device string) ([]byte, error) {
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--dco-identify", device)
}

// SecurityUnfreeze issues the host-level unfreeze attempt via a
// power-management cycle hdparm exposes (`-Z`), the lowest-risk
// freeze-mitigation strategy.
func (h *HdparmExecutor) SecurityUnfreeze(ctx context.Context, device string) ([]byte, error) {
	h.logger.Info("attempting host-issued security unfreeze", "device", device)
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "-Z", device)
}

// SecurityErase issues an ATA Security Erase Unit command, optionally
// enhanced, using the caller-supplied password (or the hdparm default
// "NULL" password for drives with no user password set).
func (h *HdparmExecutor) SecurityErase(ctx context.Context, device, password string, enhanced bool) ([]byte, error) {
	cmd := "--security-erase"
	if enhanced {
		cmd = "--security-erase-enhanced"
	}
	h.logger.Info("issuing ATA security erase", "device", device, "enhanced", enhanced)
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--user-master", "u", cmd, password, device)
}

// SecuritySetPassword sets a temporary security password, required
// before SecurityErase on a drive with no password set.
func (h *HdparmExecutor) SecuritySetPassword(ctx context.Context, device, password string) ([]byte, error) {
	return h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--user-master", "u", "--security-set-pass", password, device)
}

func formatHPAArg(sectors uint64, permanent bool) string {
	s := uitoa(sectors)
	if permanent {
		return "p" + s
	}
	return s
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
