package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/portainer-notifier/internal/adapters/discord"
	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/config"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot: poll Portainer and serve slash commands until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := openApp(cmd, opts, config.ScopePortainer|config.ScopeDiscord|config.ScopeGateway)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					app.logger.Error("close resources", "error", err)
				}
			}()

			orchestrator, err := app.orchestrator()
			if err != nil {
				return err
			}
			store, err := app.messageStore(ctx)
			if err != nil {
				return err
			}
			session, err := app.discordSession()
			if err != nil {
				return err
			}

			syncService := app.syncService(orchestrator, app.deps.newMessenger(session, app.deps.clock), store)

			dispatcher, err := application.NewDispatcher(app.logger,
				application.NewStatusCommand(syncService),
				application.NewRefreshCommand(syncService),
			)
			if err != nil {
				return fmt.Errorf("wire command dispatcher: %w", err)
			}

			bot := discord.NewBot(session, app.cfg.Discord.GuildID, dispatcher, app.logger)
			if err := bot.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := bot.Close(); err != nil {
					app.logger.Error("close discord gateway", "error", err)
				}
			}()

			application.NewPoller(syncService, app.cfg.Poll.Interval, app.cfg.Poll.Timeout, app.logger).Run(ctx)

			app.logger.Info("shutting down")
			return nil
		},
	}
}
