// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wiring constructs the shared subsystem stack every CLI
// subcommand needs (tool checker, discovery, hidden-area manager,
// freeze stack, wiper dispatcher, verifier, certificate assembler,
// orchestrator) from the loaded Config. Each subcommand builds its own
// stack with one Build call.
package wiring

import (
	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/pkg/certificate"
	"github.com/stratastor/eraser/pkg/drive/discovery"
	"github.com/stratastor/eraser/pkg/drive/health"
	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/freeze"
	"github.com/stratastor/eraser/pkg/hiddenarea"
	"github.com/stratastor/eraser/pkg/orchestrator"
	"github.com/stratastor/eraser/pkg/progress"
	"github.com/stratastor/eraser/pkg/rng"
	"github.com/stratastor/eraser/pkg/verify"
	"github.com/stratastor/eraser/pkg/wiper"
)

// Stack bundles every constructed subsystem a CLI command may need.
type Stack struct {
	Logger        logger.Logger
	Checker       *tools.Checker
	Hdparm        *tools.HdparmExecutor
	Nvme          *tools.NvmeExecutor
	Lsblk         *tools.LsblkExecutor
	Smartctl      *tools.SmartctlExecutor
	Detector      *discovery.Detector
	HiddenArea    *hiddenarea.Manager
	FreezeStack   *freeze.Stack
	Dispatcher    *wiper.Dispatcher
	Verifier      *verify.Verifier
	Certificates  *certificate.Assembler
	HealthMonitor *health.Monitor
	Orchestrator  *orchestrator.Orchestrator
}

// Build wires the full stack from cfg, resolving external tool
// availability once up front.
func Build(cfg *config.Config, l logger.Logger) *Stack {
	toolCfg := tools.Config{
		Hdparm:     cfg.Tools.Hdparm,
		Nvme:       cfg.Tools.Nvme,
		Smartctl:   cfg.Tools.Smartctl,
		Lsblk:      cfg.Tools.Lsblk,
		Blkdiscard: cfg.Tools.Blkdiscard,
		SgSes:      cfg.Tools.SgSes,
		Megacli:    cfg.Tools.Megacli,
		Storcli64:  cfg.Tools.Storcli64,
		Percli:     cfg.Tools.Percli,
		Hpssacli:   cfg.Tools.Hpssacli,
	}
	checker := tools.NewChecker(l, toolCfg)
	checker.CheckAll()

	hdparm := tools.NewHdparmExecutor(l, cfg.Tools.Hdparm, true)
	nvme := tools.NewNvmeExecutor(l, cfg.Tools.Nvme, true)
	lsblk := tools.NewLsblkExecutor(l, cfg.Tools.Lsblk, false)
	smartctl := tools.NewSmartctlExecutor(l, cfg.Tools.Smartctl, true)

	detector := discovery.NewDetector(l, lsblk, smartctl, hdparm, nvme, checker)
	hiddenMgr := hiddenarea.NewManager(l, hdparm)
	freezeStack := freeze.NewStack(l, hdparm)
	source := rng.NewCryptoSource()
	dispatcher := wiper.NewDispatcher(l, source, hdparm, nvme)
	verifier := verify.NewVerifier(source)
	assembler := certificate.NewAssembler(certificate.NoopSigner{})
	healthMonitor := health.NewMonitor(l, smartctl, health.DefaultThresholds())
	bus := progress.Default()

	orch := orchestrator.New(l, detector, hiddenMgr, freezeStack, dispatcher, verifier, assembler, bus)

	return &Stack{
		Logger:        l,
		Checker:       checker,
		Hdparm:        hdparm,
		Nvme:          nvme,
		Lsblk:         lsblk,
		Smartctl:      smartctl,
		Detector:      detector,
		HiddenArea:    hiddenMgr,
		FreezeStack:   freezeStack,
		Dispatcher:    dispatcher,
		Verifier:      verifier,
		Certificates:  assembler,
		HealthMonitor: healthMonitor,
		Orchestrator:  orch,
	}
}

// NewLogger builds the tagged logger every subcommand constructs from
// the loaded Config, mirroring config.NewLoggerConfig's call sites.
func NewLogger(cfg *config.Config, tag string) logger.Logger {
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), tag)
	if err != nil {
		panic(err)
	}
	return l
}
