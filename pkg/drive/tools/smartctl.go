// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/internal/command"
)

// SmartctlExecutor wraps smartctl for the temperature gate, the `health`
// subcommand's self-test, and media-class hints (rotation rate, SSD/
// NVMe attributes).
type SmartctlExecutor struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	path     string
}

// NewSmartctlExecutor creates a new smartctl executor.
func NewSmartctlExecutor(l logger.Logger, path string, useSudo bool) *SmartctlExecutor {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 60 * time.Second
	return &SmartctlExecutor{logger: l, executor: executor, path: path}
}

// GetAll gets all SMART information including attributes and
// temperature (JSON format).
func (s *SmartctlExecutor) GetAll(ctx context.Context, device string) ([]byte, error) {
	s.logger.Debug("getting all SMART data", "device", device)
	return s.executor.ExecuteWithCombinedOutput(ctx, s.path, "--json", "--all", device)
}

// GetHealth gets the overall SMART health verdict.
func (s *SmartctlExecutor) GetHealth(ctx context.Context, device string) ([]byte, error) {
	return s.executor.ExecuteWithCombinedOutput(ctx, s.path, "--json", "--health", device)
}

// StartQuickTest starts a short SMART self-test (`health --self-test`).
func (s *SmartctlExecutor) StartQuickTest(ctx context.Context, device string) ([]byte, error) {
	s.logger.Info("starting quick SMART self-test", "device", device)
	return s.executor.ExecuteWithCombinedOutput(ctx, s.path, "--json", "--test=short", device)
}

// StartExtensiveTest starts an extensive/long SMART self-test.
func (s *SmartctlExecutor) StartExtensiveTest(ctx context.Context, device string) ([]byte, error) {
	s.logger.Info("starting extensive SMART self-test", "device", device)
	return s.executor.ExecuteWithCombinedOutput(ctx, s.path, "--json", "--test=long", device)
}
