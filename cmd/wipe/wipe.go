// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wipe implements the `wipe <device>` subcommand: a single
// confirmed, certified erasure run through the orchestrator.
package wipe

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

const confirmPhrase = "YES"

var opts flags

type flags struct {
	algorithm      string
	noVerify       bool
	certOutput     string
	hpaDCO         string
	noTrim         bool
	noTempCheck    bool
	maxTemp        int
	noUnfreeze     bool
	force          bool
	yes            bool
	samplePercent  float64
	minConfidence  float64
}

func NewWipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe <device>",
		Short: "Securely erase a single drive and emit a certificate",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	bindFlags(cmd, &opts)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "auto", "Erasure algorithm (auto, dod5220, gutmann, random, zero, secure_erase, crypto_erase, sanitize, trim_only)")
	cmd.Flags().BoolVar(&f.noVerify, "no-verify", false, "Skip post-wipe verification")
	cmd.Flags().StringVar(&f.certOutput, "cert-output", "", "Write the completion certificate as JSON to this path")
	cmd.Flags().StringVar(&f.hpaDCO, "hpa-dco", string(types.HPATemporaryRemove), "Hidden-area handling (ignore, detect, temporary_remove, permanent_remove)")
	cmd.Flags().BoolVar(&f.noTrim, "no-trim", false, "Skip the post-wipe TRIM/UNMAP pass")
	cmd.Flags().BoolVar(&f.noTempCheck, "no-temp-check", false, "Skip the temperature gate")
	cmd.Flags().IntVar(&f.maxTemp, "max-temp", 55, "Temperature ceiling in Celsius before wiping proceeds")
	cmd.Flags().BoolVar(&f.noUnfreeze, "no-unfreeze", false, "Do not attempt freeze mitigation on a locked drive")
	cmd.Flags().BoolVar(&f.force, "force", false, "Proceed even if the drive is mounted or the system disk")
	cmd.Flags().BoolVar(&f.yes, "yes", false, "Skip the interactive confirmation prompt")
	cmd.Flags().Float64Var(&f.samplePercent, "sample-percent", 1.0, "Percentage of the drive sampled during verification")
	cmd.Flags().Float64Var(&f.minConfidence, "min-confidence", 90.0, "Minimum verification confidence required to pass")
}

func run(cmd *cobra.Command, args []string) error {
	device := args[0]

	if !opts.yes && !wiring.Confirm(fmt.Sprintf("This will irrecoverably erase all data on %s.", device), confirmPhrase) {
		fmt.Println("aborted: confirmation phrase did not match")
		os.Exit(1)
	}

	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "wipe")
	stack := wiring.Build(cfg, l)

	wipeCfg := buildWipeConfig(&opts)
	rec := &types.DriveRecord{Path: device}

	cert, err := stack.Orchestrator.Run(context.Background(), wiring.NewSessionID(), rec, wipeCfg)
	if err != nil {
		fmt.Printf("wipe failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	if err := wiring.WriteCertificate(cert, opts.certOutput); err != nil {
		fmt.Printf("warning: failed to write certificate: %v\n", err)
	}

	fmt.Printf("%s: wipe complete, verified=%v, algorithm=%s\n", device, cert.Verification.Verified, cert.Wipe.Algorithm)
	return nil
}

func buildWipeConfig(f *flags) types.WipeConfig {
	cfg := types.DefaultWipeConfig()
	cfg.Algorithm = types.Algorithm(f.algorithm)
	if f.algorithm == "auto" {
		cfg.Algorithm = types.AlgorithmSecureErase
	}
	cfg.Verify = !f.noVerify
	cfg.HandleHPADCO = types.HandleHPADCO(f.hpaDCO)
	cfg.UseTrimAfter = !f.noTrim
	cfg.TemperatureMonitoring = !f.noTempCheck
	cfg.MaxTemperatureCelsius = f.maxTemp
	cfg.FreezeMitigation = !f.noUnfreeze
	cfg.Force = f.force
	cfg.SamplePercent = f.samplePercent
	cfg.MinConfidence = f.minConfidence
	return cfg
}
