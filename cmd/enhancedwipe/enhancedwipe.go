// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package enhancedwipe implements `enhanced-wipe`: a wipe run with a
// wider statistical verification sample and a stricter confidence
// floor than the default `wipe` command, for compliance-grade runs.
package enhancedwipe

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

const confirmPhrase = "DESTROY"

type flags struct {
	algorithm     string
	certOutput    string
	force         bool
	yes           bool
	samplePercent float64
	minConfidence float64
}

var opts flags

func NewEnhancedWipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enhanced-wipe <device>",
		Short: "Erase a drive with an expanded verification sample and confidence floor",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "auto", "Erasure algorithm")
	cmd.Flags().StringVar(&opts.certOutput, "cert-output", "", "Write the completion certificate as JSON to this path")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Proceed even if the drive is mounted or the system disk")
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "Skip the interactive confirmation prompt")
	cmd.Flags().Float64Var(&opts.samplePercent, "sample-percent", 5.0, "Percentage of the drive sampled during verification (0.1-10)")
	cmd.Flags().Float64Var(&opts.minConfidence, "min-confidence", 95.0, "Minimum verification confidence required to pass (90-100)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	device := args[0]

	if opts.samplePercent < 0.1 || opts.samplePercent > 10 {
		return fmt.Errorf("--sample-percent must be between 0.1 and 10, got %.2f", opts.samplePercent)
	}
	if opts.minConfidence < 90 || opts.minConfidence > 100 {
		return fmt.Errorf("--min-confidence must be between 90 and 100, got %.2f", opts.minConfidence)
	}

	if !opts.yes && !wiring.Confirm(fmt.Sprintf("This will irrecoverably erase all data on %s with enhanced verification.", device), confirmPhrase) {
		fmt.Println("aborted: confirmation phrase did not match")
		os.Exit(1)
	}

	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "enhanced-wipe")
	stack := wiring.Build(cfg, l)

	wipeCfg := types.DefaultWipeConfig()
	wipeCfg.Algorithm = types.AlgorithmSecureErase
	if opts.algorithm != "auto" {
		wipeCfg.Algorithm = types.Algorithm(opts.algorithm)
	}
	wipeCfg.Verify = true
	wipeCfg.Force = opts.force
	wipeCfg.SamplePercent = opts.samplePercent
	wipeCfg.MinConfidence = opts.minConfidence

	rec := &types.DriveRecord{Path: device}
	cert, err := stack.Orchestrator.Run(context.Background(), wiring.NewSessionID(), rec, wipeCfg)
	if err != nil {
		fmt.Printf("wipe failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	if err := wiring.WriteCertificate(cert, opts.certOutput); err != nil {
		fmt.Printf("warning: failed to write certificate: %v\n", err)
	}

	fmt.Printf("%s: enhanced wipe complete, verified=%v, confidence required=%.2f\n", device, cert.Verification.Verified, opts.minConfidence)
	return nil
}
