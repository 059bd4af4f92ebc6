// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package createverificationusb implements `create-verification-usb
// <output>`: writes a standalone verification payload (config + launch
// script) to a directory, meant to be written onto a USB drive an
// operator boots or mounts to audit an already-wiped drive without the
// full eraser toolchain installed.
package createverificationusb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/constants"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/lifecycle"
)

const verifyScript = `#!/bin/sh
# Standalone verification launcher written by ` + "`eraser create-verification-usb`" + `.
# Usage: ./verify.sh <device>
exec eraser verify --check-hidden "$1"
`

var selfCheckInterval time.Duration

func NewCreateVerificationUSBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-verification-usb <output>",
		Short: "Write a standalone verification payload to a directory for a USB drive",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	cmd.Flags().DurationVar(&selfCheckInterval, "self-check-interval", 0, "Re-verify the payload's checksums on this interval instead of exiting after the first write (0 disables)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	output := args[0]
	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "create-verification-usb")

	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string][]byte{
		"verify.sh":  []byte(verifyScript),
		"eraser.yml": []byte(fmt.Sprintf("# verification-only configuration, eraser %s\nwipe:\n  verify: true\n  minConfidence: %.1f\n  verificationSamplePct: %.1f\n", constants.EraserVersion, cfg.Wipe.MinConfidence, cfg.Wipe.VerificationSamplePct)),
	}

	checksums := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(output, name)
		if err := os.WriteFile(path, content, 0755); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		sum := sha256.Sum256(content)
		checksums[name] = hex.EncodeToString(sum[:])
	}

	manifest := "# sha256 checksums, regenerate if any file above changes\n"
	for name, sum := range checksums {
		manifest += fmt.Sprintf("%s  %s\n", sum, name)
	}
	if err := os.WriteFile(filepath.Join(output, "CHECKSUMS"), []byte(manifest), 0644); err != nil {
		return fmt.Errorf("failed to write checksum manifest: %w", err)
	}

	fmt.Printf("verification payload written to %s\n", output)

	if selfCheckInterval <= 0 {
		return nil
	}
	return watchIntegrity(output, files, l)
}

// watchIntegrity periodically re-hashes the payload on disk and warns
// if it drifts from what was written, catching a USB stick silently
// corrupted while plugged in.
func watchIntegrity(output string, files map[string][]byte, l logger.Logger) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to start integrity scheduler: %w", err)
	}

	check := func() {
		for name, original := range files {
			data, err := os.ReadFile(filepath.Join(output, name))
			if err != nil {
				l.Warn("verification payload file missing or unreadable", "file", name, "error", err)
				continue
			}
			if sha256.Sum256(data) != sha256.Sum256(original) {
				l.Warn("verification payload file no longer matches what was written", "file", name)
			}
		}
	}

	if _, err := scheduler.NewJob(gocron.DurationJob(selfCheckInterval), gocron.NewTask(check)); err != nil {
		return fmt.Errorf("failed to schedule integrity check: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	lifecycle.RegisterContextCanceller(cancel)
	lifecycle.RegisterShutdownHook(func() { _ = scheduler.Shutdown() })
	go lifecycle.HandleSignals(ctx)

	scheduler.Start()
	<-ctx.Done()
	return nil
}
