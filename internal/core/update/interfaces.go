package update

import (
	"context"

	"github.com/docker/docker/api/types/container"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/state"
)

// Docker is the subset of docker.Client used by the workflows.
type Docker interface {
	ComposeConfig(ctx context.Context, p docker.Project) (docker.Result, error)
	ComposeContainers(ctx context.Context, p docker.Project) ([]container.InspectResponse, error)
	ComposePull(ctx context.Context, p docker.Project, quiet bool) (docker.Result, error)
	ComposeRemove(ctx context.Context, p docker.Project, stop, quiet bool) (docker.Result, error)
	ComposeUp(ctx context.Context, p docker.Project, noStart, quiet bool) (docker.Result, error)
	ComposeStart(ctx context.Context, p docker.Project, quiet bool) (docker.Result, error)
	StartContainers(ctx context.Context, ids []string, quiet bool) (docker.Result, error)
	ListImages(ctx context.Context) ([]string, error)
	PullImage(ctx context.Context, ref string, quiet bool) (docker.Result, error)
	ImageDigests(ctx context.Context, ref string) ([]string, error)
}

type Prompter interface {
	Confirm(ctx context.Context, format string, args ...any) (bool, error)
}

// Reporter prints user-facing progress. Arguments are highlighted.
type Reporter interface {
	Progress(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Println(line string)
	Muted(s string) string
	ListPrefix(index, total int) string
}

type Resolver interface {
	Resolve(ctx context.Context, image string) (ocispec.Descriptor, error)
}

type Recorder interface {
	Record(r state.Record) error
}

var (
	_ Docker   = (*docker.Client)(nil)
	_ Recorder = (*state.Store)(nil)
)
