package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/portainer-notifier/internal/adapters/render/status"
	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/config"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON         bool
		showContainers bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Preview every stack's status without touching Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, opts, config.ScopePortainer)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			orchestrator, err := app.orchestrator()
			if err != nil {
				return err
			}
			store, err := app.messageStore(cmd.Context())
			if err != nil {
				return err
			}

			syncService := app.syncService(orchestrator, nil, store)

			fetch := func(ctx context.Context) ([]application.StackSnapshot, error) {
				fetchCtx, cancel := context.WithTimeout(ctx, app.cfg.Poll.Timeout)
				defer cancel()

				return syncService.Snapshot(fetchCtx)
			}
			source := endpointSource(app.cfg.Portainer.URL, app.cfg.Portainer.EndpointID)
			snapshots, err := fetchSnapshotsWithSpinner(cmd.Context(), cmd.ErrOrStderr(), source, app.deps.clock, fetch)
			if err != nil {
				return fmt.Errorf("fetch stacks: %w", err)
			}

			return writeSnapshotsOutput(cmd, app, snapshots, store.Snapshot(), showContainers, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print snapshots as JSON")
	cmd.Flags().BoolVar(&showContainers, "containers", false, "List the containers of each stack")
	return cmd
}

func writeSnapshotsOutput(cmd *cobra.Command, app *app, snapshots []application.StackSnapshot, messages domain.MessageIndex, showContainers, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	rendered := app.deps.statusRenderer(snapshots, statusadapter.RenderOptions{
		Messages:       messages,
		ShowContainers: showContainers,
	})

	_, err := fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
