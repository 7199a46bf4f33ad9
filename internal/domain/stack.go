package domain

import "strings"

const (
	UnknownStackName   = "Unknown Stack"
	UnknownProjectName = "Unknown Project"

	// ComposeProjectLabel is set by docker compose (and Portainer stacks) on every service container.
	ComposeProjectLabel = "com.docker.compose.project"
)

type StackID string

type Stack struct {
	ID   StackID
	Name string
}

func (s Stack) DisplayName() string {
	if strings.TrimSpace(s.Name) == "" {
		return UnknownStackName
	}

	return s.Name
}

type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerNotRunning ContainerState = "not-running"
)

// NormalizeState collapses the upstream container state to running or not-running.
// Only the exact value "running" counts as running.
func NormalizeState(raw string) ContainerState {
	if raw == string(ContainerRunning) {
		return ContainerRunning
	}

	return ContainerNotRunning
}

type Container struct {
	Name    string
	State   ContainerState
	Project string
}

func (c Container) Running() bool {
	return c.State == ContainerRunning
}

// NewContainer builds a Container from the raw fields of a container list entry.
func NewContainer(names []string, state string, labels map[string]string) Container {
	name := ""
	if len(names) > 0 {
		name = strings.TrimPrefix(names[0], "/")
	}

	return Container{
		Name:    name,
		State:   NormalizeState(state),
		Project: labels[ComposeProjectLabel],
	}
}
