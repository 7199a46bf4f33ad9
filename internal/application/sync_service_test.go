package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/portainer-notifier/internal/adapters/repo/jsonfile"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/bnema/portainer-notifier/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChannel domain.ChannelID = "chan-1"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type syncFixture struct {
	orchestrator *mocks.MockOrchestrator
	messenger    *mocks.MockMessenger
	store        *MessageStore
	service      *SyncService
	logs         *logBuffer
	dataDir      string
}

func newSyncFixture(t *testing.T, opts SyncOptions) *syncFixture {
	t.Helper()

	dataDir := filepath.Join(t.TempDir(), "data")
	repo, err := jsonfile.NewRepository(dataDir)
	require.NoError(t, err)

	return newSyncFixtureWithRepo(t, repo, dataDir, opts)
}

func newSyncFixtureWithRepo(t *testing.T, repo ports.StateRepository, dataDir string, opts SyncOptions) *syncFixture {
	t.Helper()

	if opts.ChannelID == "" {
		opts.ChannelID = testChannel
	}

	orchestrator := mocks.NewMockOrchestrator(t)
	messenger := mocks.NewMockMessenger(t)
	store := NewMessageStore(repo)
	logger, logs := newTestLogger()

	service := NewSyncService(orchestrator, messenger, store, opts, logger, fixedClock{now: testNow})
	service.newCycleID = func() string { return "cycle-test" }

	return &syncFixture{
		orchestrator: orchestrator,
		messenger:    messenger,
		store:        store,
		service:      service,
		logs:         logs,
		dataDir:      dataDir,
	}
}

func (f *syncFixture) upstream(stacks []domain.Stack, containers []domain.Container) {
	f.orchestrator.EXPECT().ListStacks(mockAnyContext()).Return(stacks, nil)
	f.orchestrator.EXPECT().ListContainers(mockAnyContext()).Return(containers, nil)
}

func webStack() ([]domain.Stack, []domain.Container) {
	return []domain.Stack{{ID: "s1", Name: "web"}},
		[]domain.Container{domain.NewContainer([]string{"/web_1"}, "running", map[string]string{domain.ComposeProjectLabel: "web"})}
}

func TestRunCycleCreatesMessageForNewStack(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	var sent domain.StatusArtifact
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).
		Run(func(_ context.Context, _ domain.ChannelID, artifact domain.StatusArtifact) { sent = artifact }).
		Return("m1", nil).Once()

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Stacks)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Updated)
	assert.Empty(t, report.Failures)
	assert.Equal(t, "cycle-test", report.ID)

	assert.Equal(t, "🟢 **web**", sent.Title)
	assert.Contains(t, sent.Fields[0].Value, "1/1")
	assert.Contains(t, sent.Fields[0].Value, "Running")

	assert.Equal(t, domain.MessageIndex{"s1": "m1"}, f.store.Snapshot())

	data, err := os.ReadFile(filepath.Join(f.dataDir, jsonfile.StateFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"s1":"m1"}`, string(data))
}

func TestRunCycleEditsExistingMessage(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.store.Set("s1", "m1")
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m1"), mock.Anything).Return(nil).Once()

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Created)
	assert.Equal(t, domain.MessageIndex{"s1": "m1"}, f.store.Snapshot())
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCycleTwiceWithSameDataOnlyCreatesOnce(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	stacks := []domain.Stack{{ID: "s1", Name: "web"}, {ID: "s2", Name: "db"}}
	containers := []domain.Container{
		{Name: "web_1", State: domain.ContainerRunning, Project: "web"},
		{Name: "db_1", State: domain.ContainerNotRunning, Project: "db"},
	}
	f.upstream(stacks, containers)

	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m1", nil).Once()
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m2", nil).Once()
	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m1"), mock.Anything).Return(nil).Once()
	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m2"), mock.Anything).Return(nil).Once()

	first, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, domain.MessageIndex{"s1": "m1", "s2": "m2"}, f.store.Snapshot())
}

func TestRunCycleRendersOfflineStackWithoutContainers(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.upstream([]domain.Stack{{ID: "s1", Name: "web"}}, nil)

	var sent domain.StatusArtifact
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).
		Run(func(_ context.Context, _ domain.ChannelID, artifact domain.StatusArtifact) { sent = artifact }).
		Return("m1", nil)

	_, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.NoContainersText, sent.Fields[1].Value)
	assert.Contains(t, sent.Fields[0].Value, "Offline")
	assert.Equal(t, domain.DefaultStatusTable()[domain.StatusOffline].Color, sent.Color)
}

func TestRunCycleUsesConfiguredStatusStyles(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{Statuses: domain.StatusTable{
		domain.StatusRunning: {Label: "Healthy", Emoji: ":ok:", Color: 7},
	}})
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	var sent domain.StatusArtifact
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).
		Run(func(_ context.Context, _ domain.ChannelID, artifact domain.StatusArtifact) { sent = artifact }).
		Return("m1", nil)

	_, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":ok: **web**", sent.Title)
	assert.Equal(t, 7, sent.Color)
	assert.Contains(t, sent.Fields[0].Value, "**Status:** Healthy")
}

func TestRunCycleFetchFailureAbortsWithoutSideEffects(t *testing.T) {
	repo := mocks.NewMockStateRepository(t)
	f := newSyncFixtureWithRepo(t, repo, "", SyncOptions{})
	f.store.Set("s1", "m1")

	fetchErr := &domain.TransportError{Op: "list stacks", StatusCode: 502, Err: errors.New("bad gateway")}
	f.orchestrator.EXPECT().ListStacks(mockAnyContext()).Return(nil, fetchErr)
	f.orchestrator.EXPECT().ListContainers(mockAnyContext()).Return(nil, nil).Maybe()

	_, err := f.service.RunCycle(context.Background())
	require.Error(t, err)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 502, transportErr.StatusCode)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, f.logs.String(), "fetch orchestration state")
}

func TestRunCycleContainerFetchFailureAborts(t *testing.T) {
	repo := mocks.NewMockStateRepository(t)
	f := newSyncFixtureWithRepo(t, repo, "", SyncOptions{})

	f.orchestrator.EXPECT().ListStacks(mockAnyContext()).Return([]domain.Stack{{ID: "s1", Name: "web"}}, nil).Maybe()
	f.orchestrator.EXPECT().ListContainers(mockAnyContext()).Return(nil, errors.New("connection refused"))

	_, err := f.service.RunCycle(context.Background())
	require.ErrorContains(t, err, "list containers")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRunCycleWithNoStacksIsANoop(t *testing.T) {
	repo := mocks.NewMockStateRepository(t)
	f := newSyncFixtureWithRepo(t, repo, "", SyncOptions{PruneMissing: true})
	f.store.Set("s1", "m1")
	f.upstream(nil, []domain.Container{{Name: "stray", State: domain.ContainerRunning}})

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Stacks)
	assert.Equal(t, domain.MessageIndex{"s1": "m1"}, f.store.Snapshot())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRunCycleIsolatesPerStackFailures(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.store.Set("s2", "m2")
	f.upstream(
		[]domain.Stack{{ID: "s1", Name: "web"}, {ID: "s2", Name: "db"}, {ID: "s3", Name: "cache"}},
		nil,
	)

	sendErr := &domain.TransportError{Op: "send message", StatusCode: 429, Err: errors.New("rate limited")}
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.MatchedBy(func(a domain.StatusArtifact) bool {
		return a.Title == "🔴 **web**"
	})).Return(domain.MessageID(""), sendErr).Once()
	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m2"), mock.Anything).
		Return(errors.New("edit failed")).Once()
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.MatchedBy(func(a domain.StatusArtifact) bool {
		return a.Title == "🔴 **cache**"
	})).Return("m3", nil).Once()

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, domain.StackID("s1"), report.Failures[0].StackID)
	assert.Equal(t, domain.StackID("s2"), report.Failures[1].StackID)
	assert.ErrorIs(t, report.Err(), sendErr)
	assert.Equal(t, 1, report.Created)

	assert.Equal(t, domain.MessageIndex{"s2": "m2", "s3": "m3"}, f.store.Snapshot())

	warnings := 0
	for _, line := range f.logs.Lines() {
		if containsAll(line, "level=WARN", "could not be updated") {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestRunCycleRecreatesDeletedMessage(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.store.Set("s1", "gone")
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("gone"), mock.Anything).
		Return(&domain.TransportError{Op: "fetch message", StatusCode: 404, Err: domain.ErrMessageNotFound}).Once()
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m-new", nil).Once()

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Recreated)
	assert.Equal(t, domain.MessageIndex{"s1": "m-new"}, f.store.Snapshot())
}

func TestRunCyclePrunesRecordsOfRemovedStacks(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{PruneMissing: true})
	f.store.Set("s1", "m1")
	f.store.Set("old", "m-old")
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m1"), mock.Anything).Return(nil)

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.StackID{"old"}, report.Pruned)
	assert.Equal(t, domain.MessageIndex{"s1": "m1"}, f.store.Snapshot())
}

func TestRunCycleKeepsRecordsOfRemovedStacksWhenPruningDisabled(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{PruneMissing: false})
	f.store.Set("old", "m-old")
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m1", nil)

	report, err := f.service.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Pruned)
	assert.Equal(t, domain.MessageIndex{"old": "m-old", "s1": "m1"}, f.store.Snapshot())
}

func TestRunCycleReturnsFlushFailure(t *testing.T) {
	repo := mocks.NewMockStateRepository(t)
	f := newSyncFixtureWithRepo(t, repo, "", SyncOptions{})
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	writeErr := &domain.PersistenceError{Op: "write state file", Path: "/data/stackMessages.json", Err: errors.New("read-only file system")}
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m1", nil)
	repo.EXPECT().Save(mockAnyContext(), domain.MessageIndex{"s1": "m1"}).Return(writeErr)
	repo.EXPECT().Location().Return("/data/stackMessages.json")

	report, err := f.service.RunCycle(context.Background())
	require.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, report.Created)
	assert.Contains(t, f.logs.String(), "level=ERROR")
}

func TestRunCyclePersistsPostedMessagesWhenCancelledMidCycle(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.upstream(
		[]domain.Stack{{ID: "s1", Name: "web"}, {ID: "s2", Name: "db"}},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).
		RunAndReturn(func(context.Context, domain.ChannelID, domain.StatusArtifact) (domain.MessageID, error) {
			cancel()
			return "m1", nil
		}).Once()

	report, err := f.service.RunCycle(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, domain.StackID("s2"), report.Failures[0].StackID)
	assert.ErrorIs(t, report.Err(), context.Canceled)

	persisted, err := jsonfile.NewRepository(f.dataDir)
	require.NoError(t, err)
	index, err := persisted.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.MessageIndex{"s1": "m1"}, index)
}

func TestRunCyclePersistsPostedMessagesWhenDeadlineExpires(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.store.Set("s2", "m2")
	f.upstream(
		[]domain.Stack{{ID: "s1", Name: "web"}, {ID: "s2", Name: "db"}, {ID: "s3", Name: "cache"}},
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).Return("m1", nil).Once()
	f.messenger.EXPECT().Edit(mockAnyContext(), testChannel, domain.MessageID("m2"), mock.Anything).
		RunAndReturn(func(ctx context.Context, _ domain.ChannelID, _ domain.MessageID, _ domain.StatusArtifact) error {
			<-ctx.Done()
			return ctx.Err()
		}).Once()

	report, err := f.service.RunCycle(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, domain.StackID("s2"), report.Failures[0].StackID)
	assert.Equal(t, domain.StackID("s3"), report.Failures[1].StackID)
	assert.ErrorIs(t, report.Err(), context.DeadlineExceeded)

	data, err := os.ReadFile(filepath.Join(f.dataDir, jsonfile.StateFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"s1":"m1","s2":"m2"}`, string(data))
}

func TestRunCycleRejectsOverlappingCycles(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	stacks, containers := webStack()
	f.upstream(stacks, containers)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.messenger.EXPECT().Send(mockAnyContext(), testChannel, mock.Anything).
		RunAndReturn(func(context.Context, domain.ChannelID, domain.StatusArtifact) (domain.MessageID, error) {
			close(entered)
			<-release
			return "m1", nil
		}).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.service.RunCycle(context.Background())
		done <- err
	}()

	<-entered
	_, err := f.service.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestSnapshotEvaluatesWithoutMessaging(t *testing.T) {
	f := newSyncFixture(t, SyncOptions{})
	f.upstream(
		[]domain.Stack{{ID: "s1", Name: "web"}, {ID: "s2"}},
		[]domain.Container{
			{Name: "web_1", State: domain.ContainerRunning, Project: "web"},
			{Name: "web_2", State: domain.ContainerNotRunning, Project: "web"},
		},
	)

	snapshots, err := f.service.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, domain.StatusPartiallyRunning, snapshots[0].Status)
	assert.Equal(t, 1, snapshots[0].Running)
	assert.Equal(t, 2, snapshots[0].Total)

	// A stack without a name matches no compose project.
	assert.Equal(t, domain.StatusOffline, snapshots[1].Status)
	assert.Equal(t, "🔴 **Unknown Stack**", snapshots[1].Artifact.Title)
}

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}
