package cli

import (
	"github.com/spf13/cobra"

	"github.com/woodshed-app/woodshed/internal/reconcile"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Force bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "sync",
		Short:         "Push the local cache to the remote store",
		Long:          "Runs one reconciliation cycle if one is due. Requires remote.base_url in the config file.",
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

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			if !h.cfg.RemoteConfigured() {
				return out.Success("remote not configured")
			}
			remote := reconcile.NewHTTPRemote(h.cfg.Remote.BaseURL, h.cfg.Remote.APIKey)
			r := reconcile.New(h.store, remote, reconcile.WithInterval(h.cfg.SyncInterval()))

			if !opts.Force {
				due, err := r.NeedsSync(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "due-check", err)
				}
				if !due {
					return out.Success("not due")
				}
			}

			if err := r.Sync(ctx); err != nil {
				return WrapExitError(ExitFailure, "sync", err)
			}
			return out.Success("synced")
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "sync even if not due")

	return cmd
}
