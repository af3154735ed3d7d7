package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
)

// Project identifies a compose project by its files and optional name.
type Project struct {
	Files []string
	Name  string
}

func (p Project) String() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.Join(p.Files, ", ")
}

// Client issues docker and docker compose commands through an Executor.
type Client struct {
	exec   Executor
	logger *slog.Logger
}

func NewClient(exec Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		exec:   exec,
		logger: logger,
	}
}

func composeArgs(p Project, args ...string) []string {
	all := make([]string, 0, 3+2*len(p.Files)+len(args))
	all = append(all, "compose")
	for _, file := range p.Files {
		all = append(all, "--file", file)
	}
	if p.Name != "" {
		all = append(all, "--project-name", p.Name)
	}
	return append(all, args...)
}

func (c *Client) run(ctx context.Context, args []string, quiet bool) (Result, error) {
	c.logger.Debug("running docker", "args", strings.Join(args, " "), "quiet", quiet)
	return c.exec.Execute(ctx, Exec{Args: args, Capture: quiet})
}

// lines runs a captured command and returns its non-blank stdout lines.
func (c *Client) lines(ctx context.Context, args []string) ([]string, error) {
	var out []string
	result, err := c.exec.Execute(ctx, Exec{
		Args:     args,
		Capture:  true,
		OnStdout: func(line string) { out = append(out, line) },
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, &ExitError{Args: args, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return out, nil
}

func (c *Client) ComposeConfig(ctx context.Context, p Project) (Result, error) {
	return c.run(ctx, composeArgs(p, "config", "--quiet"), false)
}

// ComposeContainers returns the inspected state of every container of the
// project, stopped ones included.
func (c *Client) ComposeContainers(ctx context.Context, p Project) ([]container.InspectResponse, error) {
	ids, err := c.lines(ctx, composeArgs(p, "ps", "--all", "--no-trunc", "--quiet"))
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(ids) == 0 {
		return []container.InspectResponse{}, nil
	}
	return c.InspectContainers(ctx, ids)
}

func (c *Client) ComposePull(ctx context.Context, p Project, quiet bool) (Result, error) {
	args := composeArgs(p, "pull")
	if quiet {
		args = append(args, "--quiet")
	}
	return c.run(ctx, args, quiet)
}

func (c *Client) ComposeRemove(ctx context.Context, p Project, stop, quiet bool) (Result, error) {
	args := composeArgs(p, "rm", "--force")
	if stop {
		args = append(args, "--stop")
	}
	return c.run(ctx, args, quiet)
}

func (c *Client) ComposeUp(ctx context.Context, p Project, noStart, quiet bool) (Result, error) {
	args := composeArgs(p, "up")
	if noStart {
		args = append(args, "--no-start")
	} else {
		args = append(args, "--detach")
	}
	return c.run(ctx, args, quiet)
}

func (c *Client) ComposeStart(ctx context.Context, p Project, quiet bool) (Result, error) {
	return c.run(ctx, composeArgs(p, "start"), quiet)
}

func (c *Client) InspectContainers(ctx context.Context, ids []string) ([]container.InspectResponse, error) {
	args := append([]string{"container", "inspect", "--format", "json"}, ids...)
	out, err := c.lines(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect containers: %w", err)
	}

	var containers []container.InspectResponse
	if err := json.Unmarshal([]byte(strings.Join(out, "")), &containers); err != nil {
		return nil, fmt.Errorf("failed to parse container inspect output: %w", err)
	}
	if containers == nil {
		return nil, fmt.Errorf("failed to parse container inspect output: empty document")
	}
	return containers, nil
}

func (c *Client) StartContainers(ctx context.Context, ids []string, quiet bool) (Result, error) {
	return c.run(ctx, append([]string{"container", "start"}, ids...), quiet)
}

// ListImages returns every local image as repository:tag, in docker's order.
func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	images, err := c.lines(ctx, []string{"image", "ls", "--format", "{{.Repository}}:{{.Tag}}"})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (c *Client) PullImage(ctx context.Context, ref string, quiet bool) (Result, error) {
	args := []string{"image", "pull", ref}
	if quiet {
		args = append(args, "--quiet")
	}
	return c.run(ctx, args, quiet)
}

// ImageDigests returns the repo digests (name@sha256:...) of a local image.
func (c *Client) ImageDigests(ctx context.Context, ref string) ([]string, error) {
	out, err := c.lines(ctx, []string{"image", "inspect", "--format", "json", ref})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}

	var images []image.InspectResponse
	if err := json.Unmarshal([]byte(strings.Join(out, "")), &images); err != nil {
		return nil, fmt.Errorf("failed to parse image inspect output: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("image %s not found", ref)
	}
	return images[0].RepoDigests, nil
}
