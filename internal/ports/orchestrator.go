package ports

import (
	"context"

	"github.com/bnema/portainer-notifier/internal/domain"
)

// Orchestrator reads the current stacks and containers from the orchestration API.
type Orchestrator interface {
	ListStacks(ctx context.Context) ([]domain.Stack, error)
	ListContainers(ctx context.Context) ([]domain.Container, error)
}
