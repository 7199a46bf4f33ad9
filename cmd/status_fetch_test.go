package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchedSnapshots() []application.StackSnapshot {
	return application.Evaluate(
		[]domain.Stack{{ID: "1", Name: "web"}, {ID: "2", Name: "db"}},
		[]domain.Container{
			{Name: "web-app-1", State: domain.ContainerRunning, Project: "web"},
			{Name: "db-primary-1", State: domain.ContainerNotRunning, Project: "db"},
		},
		domain.DefaultStatusTable(),
	)
}

func TestStatusFetchModelShowsSourceWhileFetching(t *testing.T) {
	model := newStatusFetchModel("https://portainer.local (endpoint 3)", nil)

	assert.Contains(t, model.View(), "Fetching stacks from https://portainer.local (endpoint 3)...")
}

func TestStatusFetchModelSummarizesSnapshots(t *testing.T) {
	model := newStatusFetchModel("https://portainer.local (endpoint 1)", nil)

	updated, cmd := model.Update(snapshotsFetchedMsg{snapshots: fetchedSnapshots(), elapsed: 1500 * time.Millisecond})
	require.NotNil(t, cmd)

	done := updated.(statusFetchModel)
	assert.True(t, done.done)
	assert.Len(t, done.snapshots, 2)
	assert.Equal(t, "Fetched 2 stacks (1/2 containers running) from https://portainer.local (endpoint 1) in 1.5s\n", done.View())
}

func TestStatusFetchModelHidesSummaryOnError(t *testing.T) {
	model := newStatusFetchModel("portainer", nil)

	updated, _ := model.Update(snapshotsFetchedMsg{err: errors.New("list stacks: status 401")})

	assert.Empty(t, updated.(statusFetchModel).View())
}

func TestFetchSnapshotsWithSpinnerReturnsFetchResult(t *testing.T) {
	out := &bytes.Buffer{}

	snapshots, err := fetchSnapshotsWithSpinner(context.Background(), out, "portainer", fixedClock{},
		func(context.Context) ([]application.StackSnapshot, error) {
			return fetchedSnapshots(), nil
		})
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)

	fetchErr := errors.New("list containers: connection refused")
	_, err = fetchSnapshotsWithSpinner(context.Background(), out, "portainer", fixedClock{},
		func(context.Context) ([]application.StackSnapshot, error) {
			return nil, fetchErr
		})
	assert.ErrorIs(t, err, fetchErr)
}
