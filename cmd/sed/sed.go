// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package sed implements the `sed <device> {status|crypto-erase|unlock}`
// subcommand group for self-encrypting drives managed through the ATA
// security feature set.
package sed

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/config"
	"github.com/stratastor/eraser/internal/wiring"
	"github.com/stratastor/eraser/pkg/errors"
)

const confirmPhrase = "DESTROY"

var password string

func NewSedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sed",
		Short: "Inspect or crypto-erase a self-encrypting drive",
	}

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCryptoEraseCmd())
	cmd.AddCommand(newUnlockCmd())
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <device>",
		Short: "Show ATA security feature status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device := args[0]
			cfg := config.GetConfig()
			l := wiring.NewLogger(cfg, "sed")
			stack := wiring.Build(cfg, l)

			out, err := stack.Hdparm.SecurityFreezeStatus(context.Background(), device)
			if err != nil {
				fmt.Printf("%s: status check failed: %v\n", device, err)
				os.Exit(errors.ExitCode(err))
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newCryptoEraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crypto-erase <device>",
		Short: "Instantly invalidate the drive's encryption key (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device := args[0]
			if !wiring.Confirm(fmt.Sprintf("This will instantly destroy the encryption key on %s, making all data unrecoverable.", device), confirmPhrase) {
				fmt.Println("aborted: confirmation phrase did not match")
				os.Exit(1)
			}

			cfg := config.GetConfig()
			l := wiring.NewLogger(cfg, "sed")
			stack := wiring.Build(cfg, l)

			out, err := stack.Hdparm.SecurityErase(context.Background(), device, password, true)
			if err != nil {
				fmt.Printf("%s: crypto-erase failed: %v\n", device, err)
				os.Exit(errors.ExitCode(err))
			}
			fmt.Printf("%s: crypto-erase complete\n%s\n", device, string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "ATA security password (required unless the drive uses a factory-default password)")
	return cmd
}

func newUnlockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlock <device> <password>",
		Short: "Unfreeze the security feature set using the drive's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, pw := args[0], args[1]
			cfg := config.GetConfig()
			l := wiring.NewLogger(cfg, "sed")
			stack := wiring.Build(cfg, l)

			if _, err := stack.Hdparm.SecuritySetPassword(context.Background(), device, pw); err != nil {
				fmt.Printf("%s: unlock failed: %v\n", device, err)
				os.Exit(errors.ExitCode(err))
			}
			out, err := stack.Hdparm.SecurityUnfreeze(context.Background(), device)
			if err != nil {
				fmt.Printf("%s: unfreeze failed: %v\n", device, err)
				os.Exit(errors.ExitCode(err))
			}
			fmt.Printf("%s: unlocked\n%s\n", device, string(out))
			return nil
		},
	}
	return cmd
}
