package cli

import (
	"github.com/spf13/cobra"

	"github.com/woodshed-app/woodshed/internal/domain"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Populate the local store with demo data",
		Long:          "Sends the demo-data event through the core and persists the result. A non-empty model is left untouched.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := openHost(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer h.Close()

			if _, err := h.dispatch(domain.SeedDemoData{}); err != nil {
				return WrapExitError(ExitFailure, "seed", err)
			}
			if err := h.persist(ctx); err != nil {
				return WrapExitError(ExitCommandError, "persist", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success("seeded")
		},
	}
	return cmd
}
