package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/portainer-notifier/internal/ports"
)

const (
	StatusCommandName  = "status"
	RefreshCommandName = "refresh"
)

type cycleRunner interface {
	RunCycle(ctx context.Context) (CycleReport, error)
}

type snapshotter interface {
	Snapshot(ctx context.Context) ([]StackSnapshot, error)
}

// StatusCommand replies with a one-line summary per stack without touching the tracked messages.
type StatusCommand struct {
	stacks snapshotter
}

func NewStatusCommand(stacks snapshotter) *StatusCommand {
	return &StatusCommand{stacks: stacks}
}

func (c *StatusCommand) Name() string { return StatusCommandName }

func (c *StatusCommand) Description() string { return "Show the current status of every stack" }

func (c *StatusCommand) Execute(ctx context.Context, interaction ports.Interaction) error {
	snapshots, err := c.stacks.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot stacks: %w", err)
	}

	return interaction.Reply(ctx, SummarizeSnapshots(snapshots), true)
}

func SummarizeSnapshots(snapshots []StackSnapshot) string {
	if len(snapshots) == 0 {
		return "No stacks found."
	}

	lines := make([]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		lines = append(lines, fmt.Sprintf("%s **%s** %d/%d (%s)",
			snapshot.Style.Emoji,
			snapshot.Stack.DisplayName(),
			snapshot.Running,
			snapshot.Total,
			snapshot.Style.Label,
		))
	}

	return strings.Join(lines, "\n")
}

// RefreshCommand runs a sync cycle immediately instead of waiting for the next poll.
type RefreshCommand struct {
	cycles cycleRunner
}

func NewRefreshCommand(cycles cycleRunner) *RefreshCommand {
	return &RefreshCommand{cycles: cycles}
}

func (c *RefreshCommand) Name() string { return RefreshCommandName }

func (c *RefreshCommand) Description() string { return "Refresh every stack status message now" }

func (c *RefreshCommand) Execute(ctx context.Context, interaction ports.Interaction) error {
	report, err := c.cycles.RunCycle(ctx)
	if errors.Is(err, ErrCycleInProgress) {
		return interaction.Reply(ctx, "A refresh is already in progress.", true)
	}
	if err != nil {
		return fmt.Errorf("run sync cycle: %w", err)
	}

	return interaction.Reply(ctx, fmt.Sprintf("Refreshed %d stacks: %d created, %d updated, %d failed.",
		report.Stacks,
		report.Created+report.Recreated,
		report.Updated,
		len(report.Failures),
	), true)
}
