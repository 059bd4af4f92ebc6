// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package verify implements the `verify <device>` subcommand: an
// out-of-band confidence check run against a drive without performing
// a wipe, for auditing a drive erased outside this tool.
package verify

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/errors"
)

var (
	checkHidden   bool
	samplePercent float64
)

func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <device>",
		Short: "Run a verification pass against a drive without wiping it",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().BoolVar(&checkHidden, "check-hidden", false, "Also report HPA/DCO hidden-area state")
	cmd.Flags().Float64Var(&samplePercent, "sample-percent", 1.0, "Percentage of the drive to sample")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	device := args[0]
	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "verify")
	stack := wiring.Build(cfg, l)
	ctx := context.Background()

	info, err := stack.Detector.Detect(ctx, device)
	if err != nil {
		fmt.Printf("detect failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	h, err := blockio.Open(device)
	if err != nil {
		fmt.Printf("open failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
	defer h.Close()

	sample, err := stack.Verifier.Sample(ctx, h, samplePercent)
	if err != nil {
		fmt.Printf("sampling failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
	report := stack.Verifier.Analyze(ctx, h, sample)

	fmt.Printf("%s: entropy=%.4f confidence=%.2f verified=%v\n", device, report.Entropy, report.ConfidenceScore, report.Verified(cfg.Wipe.MinConfidence))

	if checkHidden {
		if info.HPA != nil {
			fmt.Printf("%s: HPA hidden_bytes=%d\n", device, info.HPA.SizeBytes())
		}
		if info.DCO != nil {
			fmt.Printf("%s: DCO hidden_bytes=%d\n", device, info.DCO.SizeBytes())
		}
		if info.HPA == nil && info.DCO == nil {
			fmt.Printf("%s: no hidden area detected\n", device)
		}
	}
	return nil
}
