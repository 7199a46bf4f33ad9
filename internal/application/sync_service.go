package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrCycleInProgress = errors.New("sync cycle already in progress")

// flushTimeout bounds the index save, which runs even after the cycle context is done so that
// messages already posted stay tracked.
const flushTimeout = 10 * time.Second

type SyncOptions struct {
	ChannelID domain.ChannelID
	Statuses  domain.StatusTable
	// PruneMissing drops records of stacks the orchestrator no longer returns.
	PruneMissing bool
}

type SyncService struct {
	orchestrator ports.Orchestrator
	messenger    ports.Messenger
	store        *MessageStore
	opts         SyncOptions
	logger       *slog.Logger
	clock        ports.Clock
	newCycleID   func() string

	cycle sync.Mutex
}

func NewSyncService(orchestrator ports.Orchestrator, messenger ports.Messenger, store *MessageStore, opts SyncOptions, logger *slog.Logger, clock ports.Clock) *SyncService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Statuses == nil {
		opts.Statuses = domain.DefaultStatusTable()
	}

	return &SyncService{
		orchestrator: orchestrator,
		messenger:    messenger,
		store:        store,
		opts:         opts,
		logger:       logger,
		clock:        clock,
		newCycleID:   uuid.NewString,
	}
}

// RunCycle performs one fetch, classify, render and reconcile pass. A fetch failure aborts the
// cycle before anything is sent or persisted. Failures to send or edit a single stack's message
// are collected in the report and do not stop the remaining stacks.
func (s *SyncService) RunCycle(ctx context.Context) (report CycleReport, err error) {
	if !s.cycle.TryLock() {
		return CycleReport{}, ErrCycleInProgress
	}
	defer s.cycle.Unlock()

	report = CycleReport{ID: s.newCycleID(), StartedAt: s.clock.Now()}
	logger := s.logger.With("cycle_id", report.ID)
	defer func() {
		report.Duration = s.clock.Now().Sub(report.StartedAt)
	}()

	stacks, containers, err := s.fetch(ctx)
	if err != nil {
		logger.Error("fetch orchestration state", "error", err)
		return report, err
	}
	if len(stacks) == 0 {
		logger.Debug("orchestrator returned no stacks")
		return report, nil
	}

	snapshots := Evaluate(stacks, containers, s.opts.Statuses)
	report.Stacks = len(snapshots)

	for _, snapshot := range snapshots {
		outcome, err := s.reconcileWithin(ctx, logger, snapshot)
		if err != nil {
			report.Failures = append(report.Failures, StackFailure{
				StackID:   snapshot.Stack.ID,
				StackName: snapshot.Stack.DisplayName(),
				Err:       err,
			})
			continue
		}
		report.record(outcome)
	}

	if s.opts.PruneMissing {
		report.Pruned = s.pruneMissing(stacks)
		if len(report.Pruned) > 0 {
			logger.Info("pruned records of removed stacks", "stack_ids", report.Pruned)
		}
	}

	if len(report.Failures) > 0 {
		logger.Warn("some stack messages could not be updated",
			"failed", len(report.Failures),
			"stacks", report.Stacks,
			"error", report.Err(),
		)
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err = s.store.Flush(flushCtx); err != nil {
		logger.Error("persist message index, stacks posted this cycle may be duplicated next cycle",
			"location", s.store.Location(),
			"error", err,
		)
		return report, fmt.Errorf("flush message index: %w", err)
	}

	logger.Info("sync cycle complete",
		"stacks", report.Stacks,
		"created", report.Created,
		"updated", report.Updated,
		"recreated", report.Recreated,
		"failed", len(report.Failures),
	)

	return report, nil
}

// Snapshot fetches and evaluates every stack without touching any message.
func (s *SyncService) Snapshot(ctx context.Context) ([]StackSnapshot, error) {
	stacks, containers, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	return Evaluate(stacks, containers, s.opts.Statuses), nil
}

func (s *SyncService) fetch(ctx context.Context) ([]domain.Stack, []domain.Container, error) {
	var (
		stacks     []domain.Stack
		containers []domain.Container
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		stacks, err = s.orchestrator.ListStacks(groupCtx)
		if err != nil {
			return fmt.Errorf("list stacks: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		containers, err = s.orchestrator.ListContainers(groupCtx)
		if err != nil {
			return fmt.Errorf("list containers: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return stacks, containers, nil
}

// reconcileWithin skips the messenger once the cycle context is done; the stack is retried next cycle.
func (s *SyncService) reconcileWithin(ctx context.Context, logger *slog.Logger, snapshot StackSnapshot) (StackOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("cycle stopped before stack was reconciled: %w", err)
	}

	return s.reconcile(ctx, logger, snapshot)
}

func (s *SyncService) reconcile(ctx context.Context, logger *slog.Logger, snapshot StackSnapshot) (StackOutcome, error) {
	stackID := snapshot.Stack.ID

	if messageID, ok := s.store.Get(stackID); ok {
		err := s.messenger.Edit(ctx, s.opts.ChannelID, messageID, snapshot.Artifact)
		if err == nil {
			return OutcomeUpdated, nil
		}
		if !errors.Is(err, domain.ErrMessageNotFound) {
			return "", fmt.Errorf("edit message %s: %w", messageID, err)
		}

		logger.Info("tracked message was deleted, posting a new one",
			"stack_id", stackID,
			"message_id", messageID,
		)
		if err := s.post(ctx, snapshot); err != nil {
			return "", err
		}
		return OutcomeRecreated, nil
	}

	if err := s.post(ctx, snapshot); err != nil {
		return "", err
	}

	return OutcomeCreated, nil
}

func (s *SyncService) post(ctx context.Context, snapshot StackSnapshot) error {
	messageID, err := s.messenger.Send(ctx, s.opts.ChannelID, snapshot.Artifact)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	s.store.Set(snapshot.Stack.ID, messageID)
	return nil
}

func (s *SyncService) pruneMissing(stacks []domain.Stack) []domain.StackID {
	keep := make(map[domain.StackID]struct{}, len(stacks))
	for _, stack := range stacks {
		keep[stack.ID] = struct{}{}
	}

	return s.store.Retain(keep)
}

// Evaluate groups containers by stack, classifies each stack and renders its artifact,
// preserving the order of stacks.
func Evaluate(stacks []domain.Stack, containers []domain.Container, statuses domain.StatusTable) []StackSnapshot {
	groups := domain.GroupContainers(containers)

	snapshots := make([]StackSnapshot, 0, len(stacks))
	for _, stack := range stacks {
		stackContainers := groups.For(stack.Name)
		total := len(stackContainers)
		running := domain.CountRunning(stackContainers)

		_, status := domain.Classify(total, running)
		style := statuses.Lookup(status)

		snapshots = append(snapshots, StackSnapshot{
			Stack:      stack,
			Status:     status,
			Style:      style,
			Running:    running,
			Total:      total,
			Containers: stackContainers,
			Artifact:   domain.RenderArtifact(stack, style.Label, running, total, stackContainers, style.Emoji, style.Color),
		})
	}

	return snapshots
}
