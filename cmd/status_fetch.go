package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type snapshotsFetchedMsg struct {
	snapshots []application.StackSnapshot
	err       error
	elapsed   time.Duration
}

// statusFetchModel spins while the stacks of one endpoint are fetched and leaves a one-line
// summary of what came back.
type statusFetchModel struct {
	spinner   spinner.Model
	source    string
	fetch     tea.Cmd
	snapshots []application.StackSnapshot
	elapsed   time.Duration
	err       error
	done      bool
}

func newStatusFetchModel(source string, fetch tea.Cmd) statusFetchModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return statusFetchModel{
		spinner: s,
		source:  source,
		fetch:   fetch,
	}
}

func (m statusFetchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m statusFetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case snapshotsFetchedMsg:
		m.done = true
		m.snapshots = msg.snapshots
		m.err = msg.err
		m.elapsed = msg.elapsed
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m statusFetchModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s Fetching stacks from %s...", m.spinner.View(), m.source)
	}
	if m.err != nil {
		return ""
	}

	return fetchSummary(m.source, m.snapshots, m.elapsed) + "\n"
}

func fetchSummary(source string, snapshots []application.StackSnapshot, elapsed time.Duration) string {
	containers, running := 0, 0
	for _, snapshot := range snapshots {
		containers += snapshot.Total
		running += snapshot.Running
	}

	return fmt.Sprintf("Fetched %d stacks (%d/%d containers running) from %s in %s",
		len(snapshots), running, containers, source, elapsed.Round(time.Millisecond))
}

// fetchSnapshotsWithSpinner runs fetch behind a spinner written to output and returns its snapshots.
func fetchSnapshotsWithSpinner(
	ctx context.Context,
	output io.Writer,
	source string,
	clock ports.Clock,
	fetch func(context.Context) ([]application.StackSnapshot, error),
) ([]application.StackSnapshot, error) {
	fetchCmd := func() tea.Msg {
		started := clock.Now()
		snapshots, err := fetch(ctx)
		return snapshotsFetchedMsg{snapshots: snapshots, err: err, elapsed: clock.Now().Sub(started)}
	}

	p := tea.NewProgram(
		newStatusFetchModel(source, fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result, ok := finalModel.(statusFetchModel)
	if !ok {
		return nil, fmt.Errorf("unexpected final fetch model type %T", finalModel)
	}

	return result.snapshots, result.err
}

// endpointSource names the Portainer endpoint being read, for progress output.
func endpointSource(portainerURL string, endpointID int) string {
	return fmt.Sprintf("%s (endpoint %d)", portainerURL, endpointID)
}
