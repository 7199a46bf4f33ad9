package discord

import (
	"context"
	"sync"

	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bwmarrin/discordgo"
)

type interactionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// interaction adapts a slash-command event. Discord expects an acknowledgement within three
// seconds, so the bot defers first and Reply then fills in the deferred response. Any further
// reply becomes a followup message.
type interaction struct {
	client  interactionClient
	event   *discordgo.Interaction
	mu      sync.Mutex
	replied bool
}

var _ ports.Interaction = (*interaction)(nil)

func newInteraction(client interactionClient, event *discordgo.Interaction) *interaction {
	return &interaction{client: client, event: event}
}

func (i *interaction) CommandName() string {
	return i.event.ApplicationCommandData().Name
}

func (i *interaction) User() string {
	switch {
	case i.event.Member != nil && i.event.Member.User != nil:
		return i.event.Member.User.Username
	case i.event.User != nil:
		return i.event.User.Username
	default:
		return ""
	}
}

func (i *interaction) deferReply(ctx context.Context) error {
	return i.client.InteractionRespond(i.event, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
}

func (i *interaction) Reply(ctx context.Context, content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.replied {
		if _, err := i.client.InteractionResponseEdit(i.event, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx)); err != nil {
			return mapRESTError("edit interaction response", err)
		}
		i.replied = true
		return nil
	}

	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := i.client.FollowupMessageCreate(i.event, true, params, discordgo.WithContext(ctx)); err != nil {
		return mapRESTError("create followup message", err)
	}

	return nil
}
