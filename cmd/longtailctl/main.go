// Package main provides the entry point for the longtailctl CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/longtail/cmd/longtailctl/commands"
	"github.com/Sumatoshi-tech/longtail/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "longtailctl",
		Short: "longtail engine control and demo CLI",
		Long: `longtailctl drives the longtail measurement engine directly, for local
testing and demoing. A real host embeds the engine and calls these verbs
from its own slash-command console; here they run against a freshly-built
Engine each invocation.

Commands:
  status     Show engine configuration and resting state
  enable     Enable measurement on the host
  disable    Disable measurement on the host
  teststart  Run a synthetic manual encounter end to end
  teststop   Stop the active manual encounter, if any`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "path to a config file (optional)")

	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewEnableCommand())
	rootCmd.AddCommand(commands.NewDisableCommand())
	rootCmd.AddCommand(commands.NewTestStartCommand())
	rootCmd.AddCommand(commands.NewTestStopCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "longtailctl %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
