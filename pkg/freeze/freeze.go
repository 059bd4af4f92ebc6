// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package freeze implements the ranked freeze-mitigation strategy stack:
// lifting a controller-imposed security freeze by trying increasingly
// invasive strategies in ascending risk order.
package freeze

import (
	"context"

	"github.com/stratastor/logger"
	"golang.org/x/exp/slices"

	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

// Strategy is one way to lift a security freeze.
type Strategy interface {
	Name() string
	Description() string
	RiskLevel() int
	CompatibleWith(reason types.FreezeReason) bool
	IsAvailable(ctx context.Context) bool
	Execute(ctx context.Context, path string, reason types.FreezeReason) error
}

// Attempt records one strategy's outcome during selection.
type Attempt struct {
	Strategy string
	Error    error
}

// Result is the outcome of running the mitigation stack against one
// drive: the winning strategy's name, or every attempt that failed.
type Result struct {
	Winner   string
	Attempts []Attempt
}

// Succeeded reports whether any strategy lifted the freeze.
func (r Result) Succeeded() bool {
	return r.Winner != ""
}

// Stack holds the registered strategies and selects among them in
// ascending risk order.
type Stack struct {
	logger     logger.Logger
	strategies []Strategy
}

// NewStack builds the default strategy stack: host unfreeze, USB
// re-authorization, controller-policy/vendor-CLI workarounds, PCIe
// hot-reset, ACPI sleep/wake, IPMI power cycle — in that risk order.
func NewStack(l logger.Logger, hdparm *tools.HdparmExecutor) *Stack {
	s := &Stack{logger: l}
	s.strategies = []Strategy{
		&hostUnfreezeStrategy{hdparm: hdparm},
		&usbReauthStrategy{},
		&controllerPolicyStrategy{},
		&pcieHotResetStrategy{},
		&acpiSleepWakeStrategy{},
		&ipmiPowerCycleStrategy{},
	}
	sortByRisk(s.strategies)
	return s
}

// Register adds an additional strategy and keeps the stack sorted by
// ascending risk, used by tests to inject fakes.
func (s *Stack) Register(strat Strategy) {
	s.strategies = append(s.strategies, strat)
	sortByRisk(s.strategies)
}

func sortByRisk(strategies []Strategy) {
	slices.SortStableFunc(strategies, func(a, b Strategy) int {
		return a.RiskLevel() - b.RiskLevel()
	})
}

// Mitigate iterates compatible, available strategies in ascending risk
// order until one succeeds or all fail.
func (s *Stack) Mitigate(ctx context.Context, path string, reason types.FreezeReason) (Result, error) {
	var result Result
	for _, strat := range s.strategies {
		if !strat.CompatibleWith(reason) {
			continue
		}
		if !strat.IsAvailable(ctx) {
			continue
		}

		s.logger.Info("attempting freeze mitigation", "device", path, "strategy", strat.Name(), "risk", strat.RiskLevel())
		err := strat.Execute(ctx, path, reason)
		result.Attempts = append(result.Attempts, Attempt{Strategy: strat.Name(), Error: err})
		if err == nil {
			result.Winner = strat.Name()
			return result, nil
		}
		s.logger.Warn("freeze mitigation strategy failed", "device", path, "strategy", strat.Name(), "error", err)
	}

	return result, errors.New(errors.FreezeAllStrategiesExhausted, "all freeze mitigation strategies exhausted").
		WithMetadata("device", path).
		WithMetadata("reason", string(reason))
}

// hostUnfreezeStrategy issues the host-level unfreeze equivalent via
// hdparm -Z. Risk 2: it only asks the host to re-negotiate power state,
// touching nothing outside the target drive.
type hostUnfreezeStrategy struct {
	hdparm *tools.HdparmExecutor
}

func (s *hostUnfreezeStrategy) Name() string        { return "host_unfreeze" }
func (s *hostUnfreezeStrategy) Description() string { return "host-issued security-unfreeze command" }
func (s *hostUnfreezeStrategy) RiskLevel() int       { return 2 }

func (s *hostUnfreezeStrategy) CompatibleWith(reason types.FreezeReason) bool {
	switch reason {
	case types.FreezeBiosSetFrozen, types.FreezeUnknown:
		return true
	default:
		return false
	}
}

func (s *hostUnfreezeStrategy) IsAvailable(ctx context.Context) bool {
	return s.hdparm != nil
}

func (s *hostUnfreezeStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	_, err := s.hdparm.SecurityUnfreeze(ctx, path)
	if err != nil {
		return errors.Wrap(err, errors.FreezeStrategyFailed).WithMetadata("strategy", s.Name())
	}
	return nil
}

// usbReauthStrategy deauthorizes and reauthorizes a USB-attached drive
// via the hotplug subsystem. Risk 3: bounces the USB link, not the host.
type usbReauthStrategy struct {
	sysfsPath func(path string) (string, bool)
}

func (s *usbReauthStrategy) Name() string { return "usb_reauth" }
func (s *usbReauthStrategy) Description() string {
	return "USB device deauthorize/reauthorize via sysfs"
}
func (s *usbReauthStrategy) RiskLevel() int { return 3 }

func (s *usbReauthStrategy) CompatibleWith(reason types.FreezeReason) bool {
	return reason == types.FreezeBiosSetFrozen || reason == types.FreezeUnknown
}

func (s *usbReauthStrategy) IsAvailable(ctx context.Context) bool {
	return false // always unavailable: no USB transport check or sysfs reauthorization is implemented.
}

func (s *usbReauthStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	return errors.New(errors.FreezeStrategyUnavailable, "USB re-authorization not available for this transport").
		WithMetadata("strategy", s.Name())
}

// controllerPolicyStrategy covers vendor-specific RAID/HBA controller
// workarounds (Dell PERC, HP SmartArray, LSI MegaRAID, Adaptec, Intel
// RST). Risk 6: requires controller-specific CLI tooling this package
// does not vendor; real support plugs in via Register.
type controllerPolicyStrategy struct{}

func (s *controllerPolicyStrategy) Name() string        { return "controller_policy_workaround" }
func (s *controllerPolicyStrategy) Description() string { return "vendor RAID/HBA controller CLI workaround" }
func (s *controllerPolicyStrategy) RiskLevel() int       { return 6 }

func (s *controllerPolicyStrategy) CompatibleWith(reason types.FreezeReason) bool {
	return reason == types.FreezeControllerPolicy || reason == types.FreezeRaidController
}

func (s *controllerPolicyStrategy) IsAvailable(ctx context.Context) bool {
	return false
}

func (s *controllerPolicyStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	return errors.New(errors.FreezeStrategyUnavailable, "no vendor controller CLI configured").
		WithMetadata("strategy", s.Name())
}

// pcieHotResetStrategy removes and rescans the drive's PCIe function.
// Risk 7: briefly drops the device from the PCIe tree.
type pcieHotResetStrategy struct{}

func (s *pcieHotResetStrategy) Name() string        { return "pcie_hot_reset" }
func (s *pcieHotResetStrategy) Description() string { return "PCIe function remove-and-rescan" }
func (s *pcieHotResetStrategy) RiskLevel() int       { return 7 }

func (s *pcieHotResetStrategy) CompatibleWith(reason types.FreezeReason) bool {
	return reason == types.FreezeOsSecurity || reason == types.FreezeUnknown
}

func (s *pcieHotResetStrategy) IsAvailable(ctx context.Context) bool {
	return false
}

func (s *pcieHotResetStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	return errors.New(errors.FreezeStrategyUnavailable, "PCIe hot-reset not available").
		WithMetadata("strategy", s.Name())
}

// acpiSleepWakeStrategy cycles the whole host through ACPI sleep/wake.
// Risk 9: affects every device on the host, not just the target drive.
type acpiSleepWakeStrategy struct{}

func (s *acpiSleepWakeStrategy) Name() string        { return "acpi_sleep_wake" }
func (s *acpiSleepWakeStrategy) Description() string { return "host-wide ACPI sleep/wake cycle" }
func (s *acpiSleepWakeStrategy) RiskLevel() int       { return 9 }

func (s *acpiSleepWakeStrategy) CompatibleWith(reason types.FreezeReason) bool {
	return true
}

func (s *acpiSleepWakeStrategy) IsAvailable(ctx context.Context) bool {
	return false
}

func (s *acpiSleepWakeStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	return errors.New(errors.FreezeStrategyUnavailable, "ACPI sleep/wake not available").
		WithMetadata("strategy", s.Name())
}

// ipmiPowerCycleStrategy reboots the host via IPMI. Risk 10: the last
// resort, used only when every lower-risk strategy has failed.
type ipmiPowerCycleStrategy struct{}

func (s *ipmiPowerCycleStrategy) Name() string        { return "ipmi_power_cycle" }
func (s *ipmiPowerCycleStrategy) Description() string { return "IPMI-issued host power cycle" }
func (s *ipmiPowerCycleStrategy) RiskLevel() int       { return 10 }

func (s *ipmiPowerCycleStrategy) CompatibleWith(reason types.FreezeReason) bool {
	return true
}

func (s *ipmiPowerCycleStrategy) IsAvailable(ctx context.Context) bool {
	return false
}

func (s *ipmiPowerCycleStrategy) Execute(ctx context.Context, path string, reason types.FreezeReason) error {
	return errors.New(errors.FreezeStrategyUnavailable, "IPMI power cycle not available").
		WithMetadata("strategy", s.Name())
}
