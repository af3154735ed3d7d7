package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/samber/lo"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/state"
	"github.com/LoriKarikari/dockcli/internal/logging"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

type Options struct {
	SkipConfirmation bool
	RestoreState     bool
	CheckNames       bool
	Quiet            bool
}

// Updater recreates a compose project with freshly pulled images.
type Updater struct {
	docker   Docker
	prompter Prompter
	reporter Reporter
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewUpdater(d Docker, prompter Prompter, reporter Reporter, recorder Recorder, logger *slog.Logger) *Updater {
	return &Updater{
		docker:   d,
		prompter: prompter,
		reporter: reporter,
		recorder: recorder,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
	}
}

func (u *Updater) Update(ctx context.Context, project docker.Project, opts Options) error {
	if !opts.SkipConfirmation {
		ok, err := u.prompter.Confirm(ctx, "Confirm update for %s", project)
		if err != nil {
			if errors.Is(err, ui.ErrAborted) {
				return ErrCancelled
			}
			return fmt.Errorf("failed to confirm update: %w", err)
		}
		if !ok {
			return ErrCancelled
		}
	}

	u.reporter.Progress("Validating %s", project)
	result, err := u.docker.ComposeConfig(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", project, err)
	}
	if !result.Success() {
		return ErrInvalidConfig
	}

	existing := u.snapshot(ctx, project, "existing containers")

	u.reporter.Progress("Pulling %s", project)
	result, err = u.docker.ComposePull(ctx, project, opts.Quiet)
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", project, err)
	}
	if !result.Success() {
		u.failed(result, "Failed to pull %s", project)
	}

	u.reporter.Progress("Removing %s", project)
	result, err = u.docker.ComposeRemove(ctx, project, true, opts.Quiet)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", project, err)
	}
	if !result.Success() {
		u.failed(result, "Failed to remove %s", project)
		return ErrRemoveFailed
	}

	u.reporter.Progress("Creating %s", project)
	result, err = u.docker.ComposeUp(ctx, project, true, opts.Quiet)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", project, err)
	}
	if !result.Success() {
		u.failed(result, "Failed to create %s", project)
		return ErrCreateFailed
	}

	containers := u.snapshot(ctx, project, "containers")

	var restored []string
	if opts.RestoreState && len(existing) > 0 {
		restored, err = u.restore(ctx, existing, containers, opts.Quiet)
	} else {
		err = u.start(ctx, project, opts)
	}
	if err != nil {
		return err
	}

	if opts.CheckNames {
		for _, m := range CheckNames(containers) {
			u.reporter.Warn("Container and %s mismatch (expected %s, got %s)", m.Kind, m.Container, m.Got)
		}
	}

	u.reporter.Success("Updated %s", project)
	u.record(project, restored)
	return nil
}

// snapshot lists the project's containers. A failure is reported and
// treated as an empty project.
func (u *Updater) snapshot(ctx context.Context, project docker.Project, what string) []container.InspectResponse {
	containers, err := u.docker.ComposeContainers(ctx, project)
	if err != nil {
		u.reporter.Error("Encountered error while getting %s", what)
		u.logger.Debug("inspect failed", "project", project.String(), "error", err)
		return nil
	}
	return containers
}

// restore starts the new containers whose names were running before.
func (u *Updater) restore(ctx context.Context, existing, containers []container.InspectResponse, quiet bool) ([]string, error) {
	running := lo.SliceToMap(lo.Filter(existing, func(c container.InspectResponse, _ int) bool {
		return docker.IsRunning(c)
	}), func(c container.InspectResponse) (string, struct{}) {
		return docker.ContainerName(c), struct{}{}
	})

	var restored []string
	for _, c := range containers {
		name := docker.ContainerName(c)
		if _, ok := running[name]; !ok {
			continue
		}

		u.reporter.Progress("Starting %s", name)
		result, err := u.docker.StartContainers(ctx, []string{docker.ContainerID(c)}, quiet)
		if err != nil {
			return restored, fmt.Errorf("failed to start %s: %w", name, err)
		}
		if !result.Success() {
			u.failed(result, "Failed to start %s", name)
			continue
		}
		u.reporter.Success("Started %s", name)
		restored = append(restored, name)
	}
	return restored, nil
}

func (u *Updater) start(ctx context.Context, project docker.Project, opts Options) error {
	if !opts.SkipConfirmation {
		ok, err := u.prompter.Confirm(ctx, "Start %s", project)
		switch {
		case errors.Is(err, ui.ErrNonInteractive):
			u.logger.Warn("not starting project without confirmation", "project", project.String())
			return nil
		case errors.Is(err, ui.ErrAborted):
			return ErrCancelled
		case err != nil:
			return fmt.Errorf("failed to confirm start: %w", err)
		case !ok:
			return nil
		}
	}

	u.reporter.Progress("Starting %s", project)
	result, err := u.docker.ComposeStart(ctx, project, opts.Quiet)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", project, err)
	}
	if !result.Success() {
		u.failed(result, "Failed to start %s", project)
		return nil
	}
	u.reporter.Success("Started %s", project)
	return nil
}

// failed reports a failed docker command with its captured stderr.
func (u *Updater) failed(result docker.Result, format string, args ...any) {
	u.reporter.Error(format, args...)
	for _, line := range result.Stderr {
		u.reporter.Println(u.reporter.Muted(line))
	}
}

func (u *Updater) record(project docker.Project, restored []string) {
	if u.recorder == nil {
		return
	}

	r := state.Record{
		Project:   project.String(),
		UpdatedAt: u.now().UTC(),
		Restored:  restored,
	}
	if len(project.Files) > 0 {
		r.File = project.Files[0]
	}

	if err := u.recorder.Record(r); err != nil {
		u.logger.Warn("failed to record update", "project", r.Project, "error", err)
	}
}
