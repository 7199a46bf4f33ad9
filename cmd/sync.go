package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/config"
	"github.com/spf13/cobra"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle and print its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd, opts, config.ScopePortainer|config.ScopeDiscord)
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
			session, err := app.discordSession()
			if err != nil {
				return err
			}

			syncService := app.syncService(orchestrator, app.deps.newMessenger(session, app.deps.clock), store)

			ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.Poll.Timeout)
			defer cancel()

			report, err := syncService.RunCycle(ctx)
			if err != nil {
				return fmt.Errorf("run sync cycle: %w", err)
			}

			if err := writeCycleReport(cmd, report, asJSON); err != nil {
				return err
			}

			if failed := len(report.Failures); failed > 0 {
				return fmt.Errorf("%d of %d stacks failed: %w", failed, report.Stacks, report.Err())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the cycle report as JSON")
	return cmd
}

func writeCycleReport(cmd *cobra.Command, report application.CycleReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(),
		"cycle %s: %d stacks, %d created, %d updated, %d recreated, %d pruned, %d failed\n",
		report.ID,
		report.Stacks,
		report.Created,
		report.Updated,
		report.Recreated,
		len(report.Pruned),
		len(report.Failures),
	)
	return err
}
