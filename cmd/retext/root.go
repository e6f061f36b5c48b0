package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/retext/cmd/retext/commands"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootCmd builds the retext command tree
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "retext",
		Short:         "AI-driven in-place text transformation for any application",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.hcl or .yaml)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(commands.NewRunCmd(&configFile))
	cmd.AddCommand(commands.NewTransformCmd(&configFile))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
