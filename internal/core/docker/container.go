package docker

import (
	"strings"

	"github.com/docker/docker/api/types/container"
)

const (
	ServiceLabel  = "com.docker.compose.service"
	hostNetwork   = "host"
	shortIDLength = 12
)

func ContainerID(c container.InspectResponse) string {
	if c.ContainerJSONBase == nil {
		return ""
	}
	return c.ID
}

// ContainerName returns the container name without docker's leading slash.
func ContainerName(c container.InspectResponse) string {
	if c.ContainerJSONBase == nil {
		return ""
	}
	return strings.TrimPrefix(c.Name, "/")
}

func ServiceName(c container.InspectResponse) string {
	if c.Config == nil {
		return ""
	}
	return c.Config.Labels[ServiceLabel]
}

func Hostname(c container.InspectResponse) string {
	if c.Config == nil {
		return ""
	}
	return c.Config.Hostname
}

func IsRunning(c container.InspectResponse) bool {
	return c.ContainerJSONBase != nil && c.State != nil && c.State.Running
}

// IsDefaultHostname reports whether the hostname is the one docker assigns
// when none is configured: the short container id.
func IsDefaultHostname(c container.InspectResponse) bool {
	id := ContainerID(c)
	if len(id) < shortIDLength {
		return false
	}
	return Hostname(c) == id[:shortIDLength]
}

func IsHostNetwork(c container.InspectResponse) bool {
	if c.NetworkSettings == nil {
		return false
	}
	networks := c.NetworkSettings.Networks
	_, ok := networks[hostNetwork]
	return len(networks) == 1 && ok
}

// Status returns docker's state string, such as "running" or "exited".
func Status(c container.InspectResponse) string {
	if c.ContainerJSONBase == nil || c.State == nil {
		return ""
	}
	return string(c.State.Status)
}
