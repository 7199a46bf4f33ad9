package domain

import (
	"fmt"
	"strings"
)

const (
	GeneralInfoFieldName = "General Information"
	ContainersFieldName  = "Containers"
	NoContainersText     = "No containers found."

	// FieldValueLimit is the longest embed field value Discord accepts.
	FieldValueLimit = 1024

	runningGlyph = "🟢"
	stoppedGlyph = "🔴"
)

type ArtifactField struct {
	Name   string
	Value  string
	Inline bool
}

// StatusArtifact is the rendered message body for one stack. It is rebuilt in full every cycle.
type StatusArtifact struct {
	Title  string
	Color  int
	Fields []ArtifactField
}

func RenderArtifact(stack Stack, label string, running, total int, containers []Container, emoji string, color int) StatusArtifact {
	generalInfo := fmt.Sprintf("**Status:** %s\n**Containers:** %d/%d", label, running, total)

	return StatusArtifact{
		Title: fmt.Sprintf("%s **%s**", emoji, stack.DisplayName()),
		Color: color,
		Fields: []ArtifactField{
			{Name: GeneralInfoFieldName, Value: generalInfo, Inline: true},
			{Name: ContainersFieldName, Value: containerList(containers), Inline: true},
		},
	}
}

// containerList keeps as many containers as fit in one field value and summarizes the rest.
func containerList(containers []Container) string {
	if len(containers) == 0 {
		return NoContainersText
	}

	var b strings.Builder
	for i, container := range containers {
		glyph := stoppedGlyph
		if container.Running() {
			glyph = runningGlyph
		}
		line := fmt.Sprintf("- %s **%s**", glyph, container.Name)
		if i > 0 {
			line = "\n" + line
		}

		remaining := len(containers) - i - 1
		reserve := 0
		if remaining > 0 {
			reserve = len("\n" + moreContainersLine(remaining))
		}
		if b.Len()+len(line)+reserve > FieldValueLimit {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(moreContainersLine(len(containers) - i))
			break
		}
		b.WriteString(line)
	}

	return b.String()
}

func moreContainersLine(n int) string {
	return fmt.Sprintf("... and %d more", n)
}
