// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package list

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
)

var printer = message.NewPrinter(language.English)

var (
	detailed      bool
	includeSystem bool
)

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List detected drives eligible for erasure",
		RunE:  runList,
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show capability and hidden-area detail")
	cmd.Flags().BoolVar(&includeSystem, "include-system", false, "Include the system/boot drive in the listing")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	l := wiring.NewLogger(cfg, "list")
	stack := wiring.Build(cfg, l)

	drives, err := stack.Detector.DiscoverAll(context.Background())
	if err != nil {
		fmt.Printf("discovery failed: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	for _, d := range drives {
		if d.IsSystemDisk && !includeSystem {
			continue
		}
		printDrive(d)
	}
	return nil
}

func printDrive(d *types.DriveInfo) {
	flags := ""
	if d.IsSystemDisk {
		flags += " [system]"
	}
	if d.IsMounted {
		flags += " [mounted]"
	}
	printer.Printf("%-14s %-10s %15d bytes  %-12s %s %s%s\n", d.Path, d.Class, d.SizeBytes, d.Model, d.Serial, describeTemp(d), flags)

	if !detailed {
		return
	}
	fmt.Printf("    secure-erase=%v crypto-erase=%v sanitize=%v trim=%v sed=%v frozen=%v(%s)\n",
		d.Capabilities.SupportsSecureErase, d.Capabilities.SupportsCryptoErase, d.Capabilities.SupportsSanitize,
		d.Capabilities.SupportsTrim, d.Capabilities.IsSelfEncrypting, d.Capabilities.IsFrozen, d.Capabilities.FreezeReason)
	if d.HPA != nil {
		fmt.Printf("    HPA: current=%d native=%d hidden_bytes=%d\n", d.HPA.CurrentMaxSectors, d.HPA.NativeMaxSectors, d.HPA.SizeBytes())
	}
	if d.DCO != nil {
		fmt.Printf("    DCO: current=%d native=%d hidden_bytes=%d\n", d.DCO.CurrentMaxSectors, d.DCO.NativeMaxSectors, d.DCO.SizeBytes())
	}
}

func describeTemp(d *types.DriveInfo) string {
	if d.TemperatureC <= 0 {
		return ""
	}
	return fmt.Sprintf("%dC", d.TemperatureC)
}
