// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/internal/command"
)

// LsblkExecutor wraps lsblk command execution for the `list` subcommand
// and the orchestrator's mounted/system-disk refusal check.
type LsblkExecutor struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	path     string
}

// NewLsblkExecutor creates a new lsblk executor.
func NewLsblkExecutor(l logger.Logger, path string, useSudo bool) *LsblkExecutor {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 10 * time.Second
	return &LsblkExecutor{logger: l, executor: executor, path: path}
}

// ListDisks lists physical disks (no partitions/loop devices) with the
// columns the drive detector needs to classify media class.
func (l *LsblkExecutor) ListDisks(ctx context.Context) ([]byte, error) {
	l.logger.Debug("listing disk devices")
	return l.executor.ExecuteWithCombinedOutput(ctx, l.path,
		"--json",
		"--output", "NAME,PATH,TYPE,SIZE,VENDOR,MODEL,SERIAL,WWN,ROTA,TRAN,MOUNTPOINT",
		"--bytes",
		"--paths",
		"--nodeps",
		"--exclude", "7,11",
	)
}

// ListDisksWithChildren includes partitions, so the orchestrator can
// detect mounted partitions (the "refuse on mounted drive" rule).
func (l *LsblkExecutor) ListDisksWithChildren(ctx context.Context) ([]byte, error) {
	return l.executor.ExecuteWithCombinedOutput(ctx, l.path,
		"--json",
		"--output", "NAME,PATH,TYPE,SIZE,VENDOR,MODEL,SERIAL,WWN,ROTA,TRAN,MOUNTPOINT",
		"--bytes",
		"--paths",
		"--exclude", "7,11",
	)
}

// GetDevice gets detailed information about a single device, used by
// `wipe <device>` to resolve the target before dispatch.
func (l *LsblkExecutor) GetDevice(ctx context.Context, device string) ([]byte, error) {
	l.logger.Debug("getting device info", "device", device)
	return l.executor.ExecuteWithCombinedOutput(ctx, l.path,
		"--json",
		"--output", "NAME,PATH,TYPE,SIZE,VENDOR,MODEL,SERIAL,WWN,ROTA,TRAN,MOUNTPOINT",
		"--bytes",
		"--paths",
		device,
	)
}
