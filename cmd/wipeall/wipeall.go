// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wipeall implements the `wipe-all` subcommand: erase every
// eligible detected drive concurrently, bounded by
// wipe.maxConcurrentDrives, under one WipeSession.
package wipeall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

const confirmPhrase = "DESTROY_ALL_DATA"

type flags struct {
	algorithm  string
	noVerify   bool
	certDir    string
	force      bool
	yes        bool
	includeSys bool
}

var opts flags

func NewWipeAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe-all",
		Short: "Securely erase every detected, eligible drive",
		RunE:  run,
	}
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "auto", "Erasure algorithm applied to every drive")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip post-wipe verification")
	cmd.Flags().StringVar(&opts.certDir, "cert-dir", "", "Directory to write one completion certificate per drive")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Proceed even if a drive is mounted (system disk is still excluded)")
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "Skip the interactive confirmation prompt")
	cmd.Flags().BoolVar(&opts.includeSys, "include-system", false, "Include the system/boot drive (dangerous)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "wipe-all")
	stack := wiring.Build(cfg, l)
	ctx := context.Background()

	drives, err := stack.Detector.DiscoverAll(ctx)
	if err != nil {
		fmt.Printf("discovery failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	var targets []string
	for _, d := range drives {
		if d.IsSystemDisk && !opts.includeSys {
			continue
		}
		targets = append(targets, d.Path)
	}
	if len(targets) == 0 {
		fmt.Println("no eligible drives found")
		return nil
	}

	fmt.Printf("About to erase %d drive(s): %v\n", len(targets), targets)
	if !opts.yes && !wiring.Confirm("This will irrecoverably erase all data on every listed drive.", confirmPhrase) {
		fmt.Println("aborted: confirmation phrase did not match")
		os.Exit(1)
	}

	session := types.NewWipeSession(wiring.NewSessionID(), targets)
	wipeCfg := types.DefaultWipeConfig()
	if opts.algorithm != "auto" {
		wipeCfg.Algorithm = types.Algorithm(opts.algorithm)
	} else {
		wipeCfg.Algorithm = types.AlgorithmSecureErase
	}
	wipeCfg.Verify = !opts.noVerify
	wipeCfg.Force = opts.force

	concurrency := cfg.Wipe.MaxConcurrentDrives
	if concurrency <= 0 {
		concurrency = 1
	}
	sema := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	exitCode := 0
	var mu sync.Mutex

	for path, rec := range session.Drives {
		wg.Add(1)
		go func(path string, rec *types.DriveRecord) {
			defer wg.Done()
			sema <- struct{}{}
			defer func() { <-sema }()

			cert, err := stack.Orchestrator.Run(ctx, session.ID, rec, wipeCfg)
			if err != nil {
				fmt.Printf("%s: wipe failed: %v\n", path, err)
				mu.Lock()
				if code := errors.ExitCode(err); code > exitCode {
					exitCode = code
				}
				mu.Unlock()
				return
			}
			fmt.Printf("%s: wipe complete, verified=%v\n", path, cert.Verification.Verified)
			if opts.certDir != "" {
				out := filepath.Join(opts.certDir, filepath.Base(path)+".json")
				if err := wiring.WriteCertificate(cert, out); err != nil {
					fmt.Printf("%s: warning: failed to write certificate: %v\n", path, err)
				}
			}
		}(path, rec)
	}
	wg.Wait()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
