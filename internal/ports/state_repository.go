package ports

import (
	"context"

	"github.com/bnema/portainer-notifier/internal/domain"
)

type StateRepository interface {
	// Load returns an empty index when nothing has been persisted yet.
	Load(ctx context.Context) (domain.MessageIndex, error)
	// Save replaces the persisted index with index.
	Save(ctx context.Context, index domain.MessageIndex) error
	Location() string
}
