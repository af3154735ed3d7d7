package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LoriKarikari/dockcli/internal/config"
	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/state"
	"github.com/LoriKarikari/dockcli/internal/core/update"
	"github.com/LoriKarikari/dockcli/internal/logging"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

var _ update.Reporter = (*ui.Console)(nil)

// app holds what every command needs after flags are parsed.
type app struct {
	cfg      config.Config
	console  *ui.Console
	logger   *slog.Logger
	stateDir string
}

func newApp(cmd *cobra.Command) (*app, error) {
	logger := logging.New(cmd.ErrOrStderr(), verbose)

	path, err := config.Path(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}
	cfg, err := config.Load(path, configPath != "")
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path)

	stateDir, err := config.GetStateDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get state directory: %w", err)
	}

	return &app{
		cfg:      cfg,
		console:  consoleFor(cmd.OutOrStdout()),
		logger:   logger,
		stateDir: stateDir,
	}, nil
}

func consoleFor(out io.Writer) *ui.Console {
	if noColor {
		return ui.NewConsole(out, ui.WithoutColor())
	}
	return ui.NewConsole(out)
}

func (a *app) dockerClient(ctx context.Context, requireCompose bool) (*docker.Client, error) {
	cmd, err := docker.Detect(ctx, a.cfg.Docker, requireCompose, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to detect docker: %w", err)
	}
	return docker.NewClient(cmd, a.logger), nil
}

func (a *app) prompter() *ui.Prompter {
	return ui.NewPrompter(a.console, a.cfg.PageSize)
}

func (a *app) store() *state.Store {
	return state.NewStore(a.stateDir)
}

// style returns the --style flag when set, otherwise the configured style.
func (a *app) style(cmd *cobra.Command) (ui.Style, error) {
	if f := cmd.Flags().Lookup("style"); f != nil && f.Changed {
		return ui.ParseStyle(f.Value.String())
	}
	return ui.ParseStyle(a.cfg.Style)
}

// boolFlag returns the named flag when set, otherwise fallback.
func boolFlag(cmd *cobra.Command, name string, fallback bool) (bool, error) {
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}
