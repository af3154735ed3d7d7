package docker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDockerNotFound = errors.New("docker command not found: please install Docker")
	ErrDockerTooOld   = errors.New("docker client is too old")
	ErrNoComposeFound = errors.New("no compose command found: please install the Docker Compose plugin")
	ErrComposeTooOld  = errors.New("docker compose is too old")
)

// ExitError reports a docker invocation whose output was needed but which exited non-zero.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   []string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("unexpected exit code %d from docker %s", e.ExitCode, strings.Join(e.Args, " "))
	if len(e.Stderr) > 0 {
		msg += ": " + e.Stderr[len(e.Stderr)-1]
	}
	return msg
}
