package domain

import "strings"

// ContainerGroups maps a stack (compose project) name to its containers in upstream order.
type ContainerGroups map[string][]Container

func GroupContainers(containers []Container) ContainerGroups {
	groups := make(ContainerGroups)
	for _, container := range containers {
		project := projectKey(container.Project)
		if project == "" {
			project = UnknownProjectName
		}
		groups[project] = append(groups[project], container)
	}

	return groups
}

// For returns the containers of the stack named stackName, matched the same way labels are grouped.
func (g ContainerGroups) For(stackName string) []Container {
	key := projectKey(stackName)
	if key == "" {
		return nil
	}

	return g[key]
}

func projectKey(name string) string {
	return strings.TrimSpace(name)
}

func CountRunning(containers []Container) int {
	running := 0
	for _, container := range containers {
		if container.Running() {
			running++
		}
	}

	return running
}
