package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bwmarrin/discordgo"
)

type restClient interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Messenger posts and edits stack status embeds in a channel.
type Messenger struct {
	rest  restClient
	clock ports.Clock
}

var _ ports.Messenger = (*Messenger)(nil)

func NewMessenger(rest restClient, clock ports.Clock) *Messenger {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Messenger{rest: rest, clock: clock}
}

func (m *Messenger) Send(ctx context.Context, channelID domain.ChannelID, artifact domain.StatusArtifact) (domain.MessageID, error) {
	message, err := m.rest.ChannelMessageSendEmbed(string(channelID), m.embed(artifact), discordgo.WithContext(ctx))
	if err != nil {
		return "", mapRESTError("send message", err)
	}

	return domain.MessageID(message.ID), nil
}

// Edit fetches the message first so a deleted message surfaces as domain.ErrMessageNotFound.
func (m *Messenger) Edit(ctx context.Context, channelID domain.ChannelID, messageID domain.MessageID, artifact domain.StatusArtifact) error {
	if _, err := m.rest.ChannelMessage(string(channelID), string(messageID), discordgo.WithContext(ctx)); err != nil {
		return mapRESTError("fetch message", err)
	}

	if _, err := m.rest.ChannelMessageEditEmbed(string(channelID), string(messageID), m.embed(artifact), discordgo.WithContext(ctx)); err != nil {
		return mapRESTError("edit message", err)
	}

	return nil
}

func (m *Messenger) embed(artifact domain.StatusArtifact) *discordgo.MessageEmbed {
	embed := EmbedFromArtifact(artifact)
	embed.Timestamp = m.clock.Now().UTC().Format(time.RFC3339)
	return embed
}

// EmbedFromArtifact converts a rendered artifact into a Discord embed without a timestamp.
func EmbedFromArtifact(artifact domain.StatusArtifact) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(artifact.Fields))
	for _, field := range artifact.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	return &discordgo.MessageEmbed{
		Type:   discordgo.EmbedTypeRich,
		Title:  artifact.Title,
		Color:  artifact.Color,
		Fields: fields,
	}
}

func mapRESTError(op string, err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return &domain.TransportError{Op: op, Err: err}
	}

	if restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrMessageNotFound)
	}

	return &domain.TransportError{Op: op, StatusCode: restErr.Response.StatusCode, Err: err}
}
