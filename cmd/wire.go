package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/portainer-notifier/internal/adapters/discord"
	"github.com/bnema/portainer-notifier/internal/adapters/portainer"
	statusadapter "github.com/bnema/portainer-notifier/internal/adapters/render/status"
	"github.com/bnema/portainer-notifier/internal/adapters/repo/jsonfile"
	sqliterepo "github.com/bnema/portainer-notifier/internal/adapters/repo/sqlite"
	"github.com/bnema/portainer-notifier/internal/adapters/secrets"
	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/config"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/logging"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type orchestratorClient interface {
	ports.Orchestrator
	Close() error
}

// dependencies holds the constructors for outbound adapters so tests can swap them.
type dependencies struct {
	openPortainer  func(cfg config.PortainerConfig) (orchestratorClient, error)
	openDiscord    func(token string) (*discordgo.Session, error)
	newMessenger   func(session *discordgo.Session, clock ports.Clock) ports.Messenger
	statusRenderer func([]application.StackSnapshot, statusadapter.RenderOptions) string
	clock          ports.Clock
}

func defaultDependencies() dependencies {
	return dependencies{
		openPortainer: func(cfg config.PortainerConfig) (orchestratorClient, error) {
			return portainer.NewClient(portainer.Config{
				URL:                cfg.URL,
				Token:              cfg.Token,
				EndpointID:         cfg.EndpointID,
				AuthScheme:         portainer.AuthScheme(cfg.AuthScheme),
				InsecureSkipVerify: cfg.InsecureSkipVerify,
				Timeout:            cfg.Timeout,
			})
		},
		openDiscord: discord.NewSession,
		newMessenger: func(session *discordgo.Session, clock ports.Clock) ports.Messenger {
			return discord.NewMessenger(session, clock)
		},
		statusRenderer: statusadapter.Render,
		clock:          ports.SystemClock{},
	}
}

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	deps    dependencies
	closers []func() error
}

// openApp loads and validates the configuration for scope and builds the logger.
func openApp(cmd *cobra.Command, opts *rootOptions, scope config.Scope) (*app, error) {
	cfg, err := config.Load(viper.New(), opts.configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.ResolveSecrets(cmd.Context(), secrets.NewResolver(cfg.SecretRoot()), scope); err != nil {
		return nil, err
	}

	if err := cfg.Validate(scope); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}
	if cfg.File != "" {
		logger.Debug("loaded config", "path", cfg.File)
	}

	return &app{cfg: cfg, logger: logger, deps: opts.deps}, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil

	return errors.Join(errs...)
}

func (a *app) orchestrator() (ports.Orchestrator, error) {
	client, err := a.deps.openPortainer(a.cfg.Portainer)
	if err != nil {
		return nil, fmt.Errorf("wire portainer client: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	return client, nil
}

func (a *app) discordSession() (*discordgo.Session, error) {
	session, err := a.deps.openDiscord(a.cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("wire discord session: %w", err)
	}

	return session, nil
}

func (a *app) stateRepository(ctx context.Context) (ports.StateRepository, error) {
	switch a.cfg.State.Backend {
	case config.BackendSQLite:
		repo, err := sqliterepo.Open(ctx, a.cfg.State.DataDir)
		if err != nil {
			return nil, fmt.Errorf("wire sqlite state repository: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		repo, err := jsonfile.NewRepository(a.cfg.State.DataDir)
		if err != nil {
			return nil, fmt.Errorf("wire json state repository: %w", err)
		}
		return repo, nil
	}
}

// messageStore loads the persisted index. An unreadable state file is logged and the store starts
// empty, which means stacks get fresh messages on the next cycle.
func (a *app) messageStore(ctx context.Context) (*application.MessageStore, error) {
	return a.openMessageStore(ctx, false)
}

// editableMessageStore refuses an unreadable state file, so that an edit never replaces it with
// an empty index.
func (a *app) editableMessageStore(ctx context.Context) (*application.MessageStore, error) {
	return a.openMessageStore(ctx, true)
}

func (a *app) openMessageStore(ctx context.Context, strict bool) (*application.MessageStore, error) {
	repo, err := a.stateRepository(ctx)
	if err != nil {
		return nil, err
	}

	store := application.NewMessageStore(repo)
	if _, err := store.Load(ctx); err != nil {
		if strict {
			return nil, fmt.Errorf("refusing to edit %s: %w", store.Location(), err)
		}
		a.logger.Warn("starting with an empty message index", "location", store.Location(), "error", err)
		return store, nil
	}

	a.logger.Debug("loaded message index", "location", store.Location(), "messages", store.Len())
	return store, nil
}

func (a *app) syncService(orchestrator ports.Orchestrator, messenger ports.Messenger, store *application.MessageStore) *application.SyncService {
	return application.NewSyncService(orchestrator, messenger, store, application.SyncOptions{
		ChannelID:    domain.ChannelID(a.cfg.Discord.ChannelID),
		Statuses:     a.cfg.Status,
		PruneMissing: a.cfg.State.PruneMissing,
	}, a.logger, a.deps.clock)
}
