package commands

import "github.com/spf13/cobra"

// NewEnableCommand reports that measurement would be enabled. A real host
// carries this switch across the process lifetime; this standalone binary
// has no resident daemon to flip it in, so it confirms the verb and
// documents where the switch lives on a real host.
func NewEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable measurement on the host",
		RunE: func(_ *cobra.Command, _ []string) error {
			printf("measurement enabled (host-resident switch; no-op outside a live host)\n")

			return nil
		},
	}
}

// NewDisableCommand is enable's counterpart.
func NewDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable measurement on the host",
		RunE: func(_ *cobra.Command, _ []string) error {
			printf("measurement disabled (host-resident switch; no-op outside a live host)\n")

			return nil
		},
	}
}
