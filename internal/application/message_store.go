package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
)

// MessageStore owns the in-memory reconciliation index and persists it through a StateRepository.
// It is safe for concurrent use.
type MessageStore struct {
	repo  ports.StateRepository
	mu    sync.RWMutex
	index domain.MessageIndex
}

func NewMessageStore(repo ports.StateRepository) *MessageStore {
	return &MessageStore{repo: repo, index: domain.MessageIndex{}}
}

// Load replaces the in-memory index with the persisted one. On failure the index is reset to
// empty and the error is returned so the caller can log it; the store stays usable.
func (s *MessageStore) Load(ctx context.Context) (domain.MessageIndex, error) {
	index, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.index = domain.MessageIndex{}
		return domain.MessageIndex{}, fmt.Errorf("load message index: %w", err)
	}
	if index == nil {
		index = domain.MessageIndex{}
	}
	s.index = index.Clone()

	return index.Clone(), nil
}

func (s *MessageStore) Get(stackID domain.StackID) (domain.MessageID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messageID, ok := s.index[stackID]
	return messageID, ok
}

func (s *MessageStore) Set(stackID domain.StackID, messageID domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index[stackID] = messageID
}

// Retain drops every record whose stack id is not in keep and returns the dropped ids.
func (s *MessageStore) Retain(keep map[domain.StackID]struct{}) []domain.StackID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []domain.StackID
	for stackID := range s.index {
		if _, ok := keep[stackID]; ok {
			continue
		}
		delete(s.index, stackID)
		dropped = append(dropped, stackID)
	}

	return dropped
}

func (s *MessageStore) Snapshot() domain.MessageIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.index.Clone()
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.index)
}

// Flush persists the whole index, replacing whatever was stored before.
func (s *MessageStore) Flush(ctx context.Context) error {
	snapshot := s.Snapshot()

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save message index: %w", err)
	}

	return nil
}

func (s *MessageStore) Location() string {
	return s.repo.Location()
}
