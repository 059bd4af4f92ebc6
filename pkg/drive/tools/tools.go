// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package tools wraps the external command-line tools the drive
// detector and wipers shell out to: hdparm, nvme-cli, smartctl and
// lsblk. Its Checker also tracks the availability of blkdiscard, sg_ses
// and the hardware-RAID vendor CLIs, which have no wrappers here.
package tools

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/internal/command"
	"github.com/stratastor/eraser/pkg/errors"
)

// Config carries the configured path (or bare name for PATH lookup) for
// every external tool, grounded on config.Tools.
type Config struct {
	Hdparm    string
	Nvme      string
	Smartctl  string
	Lsblk     string
	Blkdiscard string
	SgSes     string
	Megacli   string
	Storcli64 string
	Percli    string
	Hpssacli  string
}

// ToolStatus represents the availability status of a tool.
type ToolStatus struct {
	Name      string
	Path      string
	Available bool
	Version   string
	Error     string
}

// Checker resolves and caches tool availability, the same pattern the
// teacher uses for its SMART/lsblk tool checker.
type Checker struct {
	logger    logger.Logger
	executor  *command.CommandExecutor
	toolPaths map[string]string
	cache     map[string]*ToolStatus
	mu        sync.RWMutex
}

// NewChecker creates a Checker from a Config.
func NewChecker(l logger.Logger, cfg Config) *Checker {
	tc := &Checker{
		logger:    l,
		executor:  command.NewCommandExecutor(false),
		toolPaths: make(map[string]string),
		cache:     make(map[string]*ToolStatus),
	}
	tc.executor.Timeout = 5 * time.Second

	tc.toolPaths["hdparm"] = cfg.Hdparm
	tc.toolPaths["nvme"] = cfg.Nvme
	tc.toolPaths["smartctl"] = cfg.Smartctl
	tc.toolPaths["lsblk"] = cfg.Lsblk
	tc.toolPaths["blkdiscard"] = cfg.Blkdiscard
	tc.toolPaths["sg_ses"] = cfg.SgSes
	tc.toolPaths["megacli"] = cfg.Megacli
	tc.toolPaths["storcli64"] = cfg.Storcli64
	tc.toolPaths["percli"] = cfg.Percli
	tc.toolPaths["hpssacli"] = cfg.Hpssacli

	return tc
}

// CheckAll resolves availability of every configured tool.
func (tc *Checker) CheckAll() map[string]*ToolStatus {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	results := make(map[string]*ToolStatus)
	for tool, path := range tc.toolPaths {
		status := tc.checkTool(tool, path)
		tc.cache[tool] = status
		results[tool] = status
	}
	return results
}

func (tc *Checker) checkTool(toolName, configuredPath string) *ToolStatus {
	status := &ToolStatus{Name: toolName, Path: configuredPath}

	candidate := configuredPath
	if candidate == "" {
		candidate = toolName
	}

	path, err := exec.LookPath(candidate)
	if err != nil {
		status.Available = false
		status.Error = fmt.Sprintf("tool not found: %v", err)
		return status
	}

	status.Available = true
	status.Path = path
	return status
}

// IsAvailable reports whether tool was found by the last CheckAll.
func (tc *Checker) IsAvailable(toolName string) bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	status, ok := tc.cache[toolName]
	return ok && status.Available
}

// Path returns the resolved path for tool, or an error naming it if the
// tool was never found, so a missing dependency like nvme-cli fails fast
// with errors.DeviceToolNotFound instead of surfacing as a confusing
// exec error deeper in the call stack.
func (tc *Checker) Path(toolName string) (string, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	status, ok := tc.cache[toolName]
	if !ok || !status.Available {
		return "", errors.New(errors.DeviceToolNotFound, "required tool not available").
			WithMetadata("tool", toolName)
	}
	return status.Path, nil
}

// ValidateRequired fails if any of requiredTools is unavailable.
func (tc *Checker) ValidateRequired(requiredTools []string) error {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	var missing []string
	for _, tool := range requiredTools {
		status, ok := tc.cache[tool]
		if !ok || !status.Available {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.DeviceToolNotFound,
			fmt.Sprintf("required tools not available: %s", strings.Join(missing, ", "))).
			WithMetadata("missing_tools", strings.Join(missing, ", "))
	}
	return nil
}

// NewExecutor builds a CommandExecutor with the given sudo setting and
// timeout.
func NewExecutor(useSudo bool, timeout time.Duration) *command.CommandExecutor {
	e := command.NewCommandExecutor(useSudo)
	e.Timeout = timeout
	return e
}
