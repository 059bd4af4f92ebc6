package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stratastor/eraser/cmd/config"
	"github.com/stratastor/eraser/cmd/createverificationusb"
	"github.com/stratastor/eraser/cmd/enhancedwipe"
	"github.com/stratastor/eraser/cmd/health"
	"github.com/stratastor/eraser/cmd/list"
	"github.com/stratastor/eraser/cmd/liveverify"
	"github.com/stratastor/eraser/cmd/sed"
	"github.com/stratastor/eraser/cmd/serve"
	"github.com/stratastor/eraser/cmd/status"
	"github.com/stratastor/eraser/cmd/verify"
	"github.com/stratastor/eraser/cmd/version"
	"github.com/stratastor/eraser/cmd/wipe"
	"github.com/stratastor/eraser/cmd/wipeall"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eraser",
		Short: "eraser: StrataSTOR secure drive erasure and certification tool",
	}

	// Drive erasure surface
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(wipe.NewWipeCmd())
	rootCmd.AddCommand(wipeall.NewWipeAllCmd())
	rootCmd.AddCommand(verify.NewVerifyCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(sed.NewSedCmd())
	rootCmd.AddCommand(enhancedwipe.NewEnhancedWipeCmd())
	rootCmd.AddCommand(createverificationusb.NewCreateVerificationUSBCmd())
	rootCmd.AddCommand(liveverify.NewLiveVerifyCmd())

	// Ambient service surface
	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(config.NewConfigCmd())

	return rootCmd
}
