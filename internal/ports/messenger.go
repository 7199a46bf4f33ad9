package ports

import (
	"context"

	"github.com/bnema/portainer-notifier/internal/domain"
)

type Messenger interface {
	Send(ctx context.Context, channelID domain.ChannelID, artifact domain.StatusArtifact) (domain.MessageID, error)
	// Edit replaces the content of an existing message. It returns domain.ErrMessageNotFound
	// when the message no longer exists.
	Edit(ctx context.Context, channelID domain.ChannelID, messageID domain.MessageID, artifact domain.StatusArtifact) error
}

// Interaction is one inbound slash-command invocation.
type Interaction interface {
	CommandName() string
	User() string
	Reply(ctx context.Context, content string, ephemeral bool) error
}
