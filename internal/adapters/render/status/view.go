package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/portainer-notifier/internal/application"
	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

type RenderOptions struct {
	// Messages maps stacks to the channel message that mirrors them. Nil hides the column.
	Messages       domain.MessageIndex
	ShowContainers bool
}

// Render draws the stack overview for the terminal.
func Render(snapshots []application.StackSnapshot, opts RenderOptions) string {
	return renderView(snapshots, opts, newStyles())
}

func renderView(snapshots []application.StackSnapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Portainer Stacks"),
		s.header.Render(headerLine(snapshots, opts)),
	}

	if len(snapshots) == 0 {
		lines = append(lines, s.empty.Render("No stacks found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, snapshot := range snapshots {
		lines = append(lines, s.section.Render(renderStack(snapshot, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(snapshots []application.StackSnapshot, opts RenderOptions) string {
	counts := map[domain.StackStatus]int{}
	for _, snapshot := range snapshots {
		counts[snapshot.Status]++
	}

	header := fmt.Sprintf(
		"stacks: %d  running: %d  partial: %d  offline: %d",
		len(snapshots),
		counts[domain.StatusRunning],
		counts[domain.StatusPartiallyRunning],
		counts[domain.StatusOffline],
	)
	if opts.Messages != nil {
		header += fmt.Sprintf("  tracked: %d", len(opts.Messages))
	}

	return header
}

func renderStack(snapshot application.StackSnapshot, opts RenderOptions, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		snapshot.Style.Emoji,
		" ",
		s.stack.Render(snapshot.Stack.DisplayName()),
		" ",
		s.header.Render(fmt.Sprintf("#%s", snapshot.Stack.ID)),
	)

	summary := lipgloss.JoinHorizontal(
		lipgloss.Top,
		statusStyle(snapshot.Style.Color).Render(snapshot.Style.Label),
		" ",
		renderProgressBar(snapshot.Running, snapshot.Total, barWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d", snapshot.Running, snapshot.Total)),
	)

	parts := []string{title, summary}
	if opts.Messages != nil {
		parts = append(parts, messageLine(snapshot.Stack.ID, opts.Messages, s))
	}
	if opts.ShowContainers {
		parts = append(parts, containerLines(snapshot.Containers, s)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func messageLine(id domain.StackID, messages domain.MessageIndex, s styles) string {
	messageID, ok := messages[id]
	if !ok {
		return s.untracked.Render("message: not posted yet")
	}

	return s.detail.Render(fmt.Sprintf("message: %s", messageID))
}

func containerLines(containers []domain.Container, s styles) []string {
	if len(containers) == 0 {
		return []string{s.empty.Render("  " + domain.NoContainersText)}
	}

	lines := make([]string, 0, len(containers))
	for _, container := range containers {
		marker := s.stopped.Render("●")
		if container.Running() {
			marker = s.running.Render("●")
		}
		lines = append(lines, fmt.Sprintf("  %s %s", marker, s.detail.Render(container.Name)))
	}

	return lines
}

func renderProgressBar(running, total, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if total > 0 {
		filled = int(math.Round(float64(width) * float64(running) / float64(total)))
	}
	filled = max(0, min(filled, width))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func hexColor(color int) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}
