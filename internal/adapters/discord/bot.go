package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bwmarrin/discordgo"
)

const DefaultCommandTimeout = 2 * time.Minute

type gateway interface {
	interactionClient
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

type commandRouter interface {
	Commands() []application.Command
	Dispatch(ctx context.Context, interaction ports.Interaction)
}

// NewSession creates a bot session that only subscribes to guild events.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return session, nil
}

// Bot connects to the gateway, registers the slash commands and routes invocations to the router.
type Bot struct {
	gateway        gateway
	guildID        string
	router         commandRouter
	logger         *slog.Logger
	commandTimeout time.Duration

	baseCtx context.Context
	remove  []func()
}

func NewBot(gateway gateway, guildID string, router commandRouter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bot{
		gateway:        gateway,
		guildID:        guildID,
		router:         router,
		logger:         logger,
		commandTimeout: DefaultCommandTimeout,
		baseCtx:        context.Background(),
	}
}

// Start opens the gateway connection. Handlers derive their context from ctx.
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctx
	b.remove = append(b.remove,
		b.gateway.AddHandler(b.onReady),
		b.gateway.AddHandler(b.onInteraction),
	)

	if err := b.gateway.Open(); err != nil {
		return &domain.TransportError{Op: "open discord gateway", Err: err}
	}

	return nil
}

func (b *Bot) Close() error {
	for _, remove := range b.remove {
		remove()
	}
	b.remove = nil

	return b.gateway.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, ready *discordgo.Ready) {
	if ready.User != nil {
		b.logger.Info("discord gateway ready", "user", ready.User.Username)
	}

	appID := applicationID(ready)
	if appID == "" {
		b.logger.Error("register slash commands", "error", "ready event carries no application id")
		return
	}

	ctx, cancel := context.WithTimeout(b.baseCtx, b.commandTimeout)
	defer cancel()

	if err := b.registerCommands(ctx, appID); err != nil {
		b.logger.Error("register slash commands", "guild", b.guildID, "error", err)
	}
}

func (b *Bot) registerCommands(ctx context.Context, appID string) error {
	definitions := CommandDefinitions(b.router.Commands())

	registered, err := b.gateway.ApplicationCommandBulkOverwrite(appID, b.guildID, definitions, discordgo.WithContext(ctx))
	if err != nil {
		return mapRESTError("register slash commands", err)
	}

	b.logger.Info("registered slash commands", "guild", b.guildID, "count", len(registered))
	return nil
}

func (b *Bot) onInteraction(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	if event.Interaction == nil || event.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(b.baseCtx, b.commandTimeout)
	defer cancel()

	interaction := newInteraction(b.gateway, event.Interaction)
	if err := interaction.deferReply(ctx); err != nil {
		b.logger.Error("acknowledge interaction", "command", interaction.CommandName(), "error", err)
		return
	}

	b.router.Dispatch(ctx, interaction)
}

// CommandDefinitions turns the registered handlers into slash-command declarations.
func CommandDefinitions(commands []application.Command) []*discordgo.ApplicationCommand {
	definitions := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, command := range commands {
		definitions = append(definitions, &discordgo.ApplicationCommand{
			Name:        command.Name(),
			Description: command.Description(),
			Type:        discordgo.ChatApplicationCommand,
		})
	}

	return definitions
}

func applicationID(ready *discordgo.Ready) string {
	if ready.Application != nil && ready.Application.ID != "" {
		return ready.Application.ID
	}
	if ready.User != nil {
		return ready.User.ID
	}

	return ""
}
