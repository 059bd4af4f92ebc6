// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/internal/command"
)

// NvmeExecutor wraps nvme-cli, used for namespace identify, the NVMe
// Format command (crypto/user-data erase), and Sanitize.
type NvmeExecutor struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	path     string
}

// NewNvmeExecutor creates a new nvme-cli executor.
func NewNvmeExecutor(l logger.Logger, path string, useSudo bool) *NvmeExecutor {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 120 * time.Second // Sanitize can run long
	return &NvmeExecutor{logger: l, executor: executor, path: path}
}

// IDCtrl runs `nvme id-ctrl --output-format=json`, exposing sanitize and
// format capability bits (sanicap, oacs).
func (n *NvmeExecutor) IDCtrl(ctx context.Context, device string) ([]byte, error) {
	n.logger.Debug("reading NVMe controller identity", "device", device)
	return n.executor.ExecuteWithCombinedOutput(ctx, n.path, "id-ctrl", "--output-format=json", device)
}

// Format issues `nvme format` with a secure-erase setting: 0 = no
// secure erase, 1 = user-data erase, 2 = crypto erase.
func (n *NvmeExecutor) Format(ctx context.Context, device string, ses int) ([]byte, error) {
	n.logger.Info("issuing NVMe format", "device", device, "ses", ses)
	return n.executor.ExecuteWithCombinedOutput(ctx, n.path, "format", device, "--ses", itoaInt(ses))
}

// Sanitize issues `nvme sanitize` with the given sanitize action:
// 1 = exit-failure-mode, 2 = block-erase, 3 = overwrite, 4 = crypto-erase.
func (n *NvmeExecutor) Sanitize(ctx context.Context, device string, action int) ([]byte, error) {
	n.logger.Info("issuing NVMe sanitize", "device", device, "action", action)
	return n.executor.ExecuteWithCombinedOutput(ctx, n.path, "sanitize", device, "--sanact", itoaInt(action))
}

// SanitizeLog polls `nvme sanitize-log` for completion status/progress.
func (n *NvmeExecutor) SanitizeLog(ctx context.Context, device string) ([]byte, error) {
	return n.executor.ExecuteWithCombinedOutput(ctx, n.path, "sanitize-log", device, "--output-format=json")
}

// SmartLog reads the NVMe SMART/health log for temperature monitoring.
func (n *NvmeExecutor) SmartLog(ctx context.Context, device string) ([]byte, error) {
	return n.executor.ExecuteWithCombinedOutput(ctx, n.path, "smart-log", device, "--output-format=json")
}

func itoaInt(v int) string {
	if v < 0 {
		return "-" + uitoa(uint64(-v))
	}
	return uitoa(uint64(v))
}
