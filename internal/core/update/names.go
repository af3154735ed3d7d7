package update

import (
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
)

type MismatchKind string

const (
	MismatchService  MismatchKind = "Service"
	MismatchHostname MismatchKind = "Hostname"
)

// Mismatch is a container whose service or hostname differs from its name.
type Mismatch struct {
	Container string
	Kind      MismatchKind
	Got       string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("Container and %s mismatch (expected %s, got %s)", m.Kind, m.Container, m.Got)
}

// CheckNames compares every container name, case-insensitively, with its
// compose service label and its hostname. Default hostnames and host-network
// containers are exempt from the hostname check.
func CheckNames(containers []container.InspectResponse) []Mismatch {
	var mismatches []Mismatch
	for _, c := range containers {
		name := docker.ContainerName(c)

		if service := docker.ServiceName(c); service != "" && !strings.EqualFold(name, service) {
			mismatches = append(mismatches, Mismatch{Container: name, Kind: MismatchService, Got: service})
		}

		if docker.IsDefaultHostname(c) || docker.IsHostNetwork(c) {
			continue
		}
		if hostname := docker.Hostname(c); !strings.EqualFold(name, hostname) {
			mismatches = append(mismatches, Mismatch{Container: name, Kind: MismatchHostname, Got: hostname})
		}
	}
	return mismatches
}
