package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/update"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

var composeStyle ui.Style

var composeCmd = &cobra.Command{
	Use:   "compose <path> [name]",
	Short: "Update a compose project",
	Long: `Select a compose project below <path> and recreate it with fresh images.

The project configuration is validated, images are pulled, containers are
removed and created again without starting them. The new containers are then
started: either the whole project after confirmation, or, with --restore-state,
only the containers that were running before the update.`,
	Example: `  # Pick a project below /srv
  dockcli compose /srv

  # Update the only project whose name matches "web" without prompts
  dockcli compose /srv web --auto-select --skip-confirmation

  # Restart only what was running and report naming problems
  dockcli compose /srv web -r -c --style status`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, name := compositionArgs(args)

		root, err := validateDir(path)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		opts, autoSelect, err := composeOptions(cmd, a)
		if err != nil {
			return err
		}
		style, err := a.style(cmd)
		if err != nil {
			return err
		}
		opts.Quiet = style.Quiet()

		ctx := cmd.Context()
		choice, err := a.selectComposition(ctx, root, name, autoSelect)
		if err != nil {
			return err
		}

		client, err := a.dockerClient(ctx, true)
		if err != nil {
			return err
		}

		project := docker.Project{Files: []string{choice.ID}, Name: choice.Name}
		updater := update.NewUpdater(client, a.prompter(), a.console, a.store(), a.logger)

		run := func() error {
			return updater.Update(ctx, project, opts)
		}
		if style == ui.StyleStatus {
			err = a.console.Status(fmt.Sprintf("Updating %s", project), run)
		} else {
			err = run()
		}
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", project, err)
		}
		return nil
	},
}

func composeOptions(cmd *cobra.Command, a *app) (update.Options, bool, error) {
	var opts update.Options
	cfg := a.cfg.Compose

	autoSelect, err := boolFlag(cmd, "auto-select", cfg.AutoSelect)
	if err != nil {
		return opts, false, err
	}
	if opts.SkipConfirmation, err = boolFlag(cmd, "skip-confirmation", cfg.SkipConfirmation); err != nil {
		return opts, false, err
	}
	if opts.RestoreState, err = boolFlag(cmd, "restore-state", cfg.RestoreState); err != nil {
		return opts, false, err
	}
	if opts.CheckNames, err = boolFlag(cmd, "check-names", cfg.CheckNames); err != nil {
		return opts, false, err
	}
	return opts, autoSelect, nil
}

func init() {
	composeCmd.Flags().BoolP("auto-select", "a", false, "select the composition without prompting when only one matches")
	composeCmd.Flags().BoolP("skip-confirmation", "y", false, "do not ask before updating or before starting the project")
	composeCmd.Flags().BoolP("restore-state", "r", false, "start only the containers that were running before")
	composeCmd.Flags().BoolP("check-names", "c", false, "report containers whose service or hostname differs from their name")
	composeCmd.Flags().VarP(&composeStyle, "style", "s", "output style ("+ui.StyleNames()+")")
	rootCmd.AddCommand(composeCmd)
}
