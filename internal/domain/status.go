package domain

import "fmt"

type StackStatus string

const (
	StatusRunning          StackStatus = "RUNNING"
	StatusPartiallyRunning StackStatus = "PARTIALLY_RUNNING"
	StatusOffline          StackStatus = "OFFLINE"
)

func (s StackStatus) Valid() bool {
	switch s {
	case StatusRunning, StatusPartiallyRunning, StatusOffline:
		return true
	default:
		return false
	}
}

func (s StackStatus) Label() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusPartiallyRunning:
		return "Partially Running"
	case StatusOffline:
		return "Offline"
	default:
		return string(s)
	}
}

// Classify maps container counts to a stack status. Callers guarantee running <= total.
func Classify(total, running int) (string, StackStatus) {
	var status StackStatus
	switch {
	case total == 0:
		status = StatusOffline
	case running == total:
		status = StatusRunning
	default:
		status = StatusPartiallyRunning
	}

	return status.Label(), status
}

type StatusStyle struct {
	Label string
	Emoji string
	Color int
}

type StatusTable map[StackStatus]StatusStyle

func DefaultStatusTable() StatusTable {
	return StatusTable{
		StatusRunning:          {Label: StatusRunning.Label(), Emoji: "🟢", Color: 0x57F287},
		StatusPartiallyRunning: {Label: StatusPartiallyRunning.Label(), Emoji: "🟡", Color: 0xFEE75C},
		StatusOffline:          {Label: StatusOffline.Label(), Emoji: "🔴", Color: 0xED4245},
	}
}

// Lookup returns the style for status, filling blank fields from the defaults.
func (t StatusTable) Lookup(status StackStatus) StatusStyle {
	defaults := DefaultStatusTable()[status]
	style, ok := t[status]
	if !ok {
		return defaults
	}

	if style.Label == "" {
		style.Label = defaults.Label
	}
	if style.Emoji == "" {
		style.Emoji = defaults.Emoji
	}
	if style.Color == 0 {
		style.Color = defaults.Color
	}

	return style
}

func (t StatusTable) Validate() error {
	for status := range t {
		if !status.Valid() {
			return fmt.Errorf("unknown stack status %q", status)
		}
	}

	return nil
}
