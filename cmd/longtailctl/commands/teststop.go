package commands

import "github.com/spf13/cobra"

// NewTestStopCommand stops the currently active manual encounter. Run
// standalone, this binary always starts with a fresh, idle Engine, so
// teststop demonstrates the stop-with-no-match path: a stop with nothing
// active is silently discarded.
func NewTestStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "teststop",
		Short: "Stop the active manual encounter, if any",
		RunE: func(_ *cobra.Command, _ []string) error {
			eng, _, err := newEngine()
			if err != nil {
				return err //nolint:wrapcheck
			}

			eng.Stop()
			printf("teststop: no active encounter in this process (use teststart for a full round trip)\n")

			return nil
		},
	}
}
