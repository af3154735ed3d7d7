package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/state"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

var testProject = docker.Project{Files: []string{"/srv/web/compose.yaml"}, Name: "web"}

func ok() docker.Result { return docker.Result{} }

func failure(stderr ...string) docker.Result {
	return docker.Result{ExitCode: 1, Stderr: stderr}
}

// mockDocker records every call and returns canned results.
type mockDocker struct {
	calls []string

	configResult  docker.Result
	pullResult    docker.Result
	removeResult  docker.Result
	upResult      docker.Result
	startResult   docker.Result
	startErr      error
	snapshots     [][]container.InspectResponse
	snapshotErrs  []error
	containerFail map[string]bool

	images       []string
	imagesErr    error
	pullFail     map[string]bool
	repoDigests  map[string][]string
	started      [][]string
	pulledImages []string
}

func (m *mockDocker) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *mockDocker) ComposeConfig(_ context.Context, p docker.Project) (docker.Result, error) {
	m.record("config %s", p)
	return m.configResult, nil
}

func (m *mockDocker) ComposeContainers(_ context.Context, p docker.Project) ([]container.InspectResponse, error) {
	m.record("ps %s", p)
	var (
		out []container.InspectResponse
		err error
	)
	if len(m.snapshots) > 0 {
		out, m.snapshots = m.snapshots[0], m.snapshots[1:]
	}
	if len(m.snapshotErrs) > 0 {
		err, m.snapshotErrs = m.snapshotErrs[0], m.snapshotErrs[1:]
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mockDocker) ComposePull(_ context.Context, p docker.Project, quiet bool) (docker.Result, error) {
	m.record("pull %s quiet=%v", p, quiet)
	return m.pullResult, nil
}

func (m *mockDocker) ComposeRemove(_ context.Context, p docker.Project, stop, quiet bool) (docker.Result, error) {
	m.record("rm %s stop=%v", p, stop)
	return m.removeResult, nil
}

func (m *mockDocker) ComposeUp(_ context.Context, p docker.Project, noStart, quiet bool) (docker.Result, error) {
	m.record("up %s noStart=%v", p, noStart)
	return m.upResult, nil
}

func (m *mockDocker) ComposeStart(_ context.Context, p docker.Project, quiet bool) (docker.Result, error) {
	m.record("start %s", p)
	return m.startResult, m.startErr
}

func (m *mockDocker) StartContainers(_ context.Context, ids []string, quiet bool) (docker.Result, error) {
	m.record("container start %s", strings.Join(ids, " "))
	m.started = append(m.started, ids)
	for _, id := range ids {
		if m.containerFail[id] {
			return failure("cannot start " + id), nil
		}
	}
	return ok(), nil
}

func (m *mockDocker) ListImages(context.Context) ([]string, error) {
	m.record("image ls")
	return m.images, m.imagesErr
}

func (m *mockDocker) PullImage(_ context.Context, ref string, quiet bool) (docker.Result, error) {
	m.record("image pull %s quiet=%v", ref, quiet)
	m.pulledImages = append(m.pulledImages, ref)
	if m.pullFail[ref] {
		return failure("manifest unknown"), nil
	}
	return ok(), nil
}

func (m *mockDocker) ImageDigests(_ context.Context, ref string) ([]string, error) {
	digests, found := m.repoDigests[ref]
	if !found {
		return nil, errors.New("no such image")
	}
	return digests, nil
}

// mockPrompter answers confirmations in order.
type mockPrompter struct {
	answers []bool
	err     error
	asked   []string
}

func (m *mockPrompter) Confirm(_ context.Context, format string, args ...any) (bool, error) {
	m.asked = append(m.asked, fmt.Sprintf(format, args...))
	if m.err != nil {
		return false, m.err
	}
	if len(m.answers) == 0 {
		return false, nil
	}
	answer := m.answers[0]
	m.answers = m.answers[1:]
	return answer, nil
}

// mockReporter keeps every line with its level symbol.
type mockReporter struct {
	lines []string
}

func (m *mockReporter) add(symbol, format string, args ...any) {
	m.lines = append(m.lines, symbol+" "+fmt.Sprintf(format, args...))
}

func (m *mockReporter) Progress(format string, args ...any) {
	m.add(ui.SymbolProgress, format, args...)
}
func (m *mockReporter) Success(format string, args ...any) { m.add(ui.SymbolOK, format, args...) }
func (m *mockReporter) Warn(format string, args ...any)    { m.add(ui.SymbolWarn, format, args...) }
func (m *mockReporter) Error(format string, args ...any)   { m.add(ui.SymbolError, format, args...) }
func (m *mockReporter) Println(line string)                { m.lines = append(m.lines, line) }
func (m *mockReporter) Muted(s string) string              { return s }
func (m *mockReporter) ListPrefix(index, total int) string { return ui.ListPrefix(index, total) }

func (m *mockReporter) has(line string) bool {
	for _, l := range m.lines {
		if l == line {
			return true
		}
	}
	return false
}

type mockRecorder struct {
	records []state.Record
	err     error
}

func (m *mockRecorder) Record(r state.Record) error {
	m.records = append(m.records, r)
	return m.err
}

type mockResolver struct {
	digests map[string]string
}

func (m *mockResolver) Resolve(_ context.Context, image string) (ocispec.Descriptor, error) {
	d, found := m.digests[image]
	if !found {
		return ocispec.Descriptor{}, errors.New("not found")
	}
	return ocispec.Descriptor{Digest: digest.Digest(d)}, nil
}

func newContainer(id, name, service, hostname string, running bool, networks ...string) container.InspectResponse {
	nets := make(map[string]*network.EndpointSettings, len(networks))
	for _, n := range networks {
		nets[n] = &network.EndpointSettings{}
	}
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			ID:    id,
			Name:  "/" + name,
			State: &container.State{Running: running},
		},
		Config: &container.Config{
			Hostname: hostname,
			Labels:   map[string]string{docker.ServiceLabel: service},
		},
		NetworkSettings: &container.NetworkSettings{Networks: nets},
	}
}
