package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LoriKarikari/dockcli/internal/core/docker"
	"github.com/LoriKarikari/dockcli/internal/core/state"
	"github.com/LoriKarikari/dockcli/internal/core/update"
)

var statusCmd = &cobra.Command{
	Use:   "status <path> [name]",
	Short: "Show the containers of a compose project",
	Long: `Select a compose project below <path> and show its containers.

With --check-names, containers whose service label or hostname differs from the
container name are reported.`,
	Example: `  # Show the containers of the project named "web"
  dockcli status /srv web --auto-select

  # Also check container naming
  dockcli status /srv web -a -c`,
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

		autoSelect, err := boolFlag(cmd, "auto-select", a.cfg.Compose.AutoSelect)
		if err != nil {
			return err
		}
		checkNames, err := boolFlag(cmd, "check-names", a.cfg.Compose.CheckNames)
		if err != nil {
			return err
		}

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
		containers, err := client.ComposeContainers(ctx, project)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		record, err := a.store().Get(choice.Name)
		switch {
		case err == nil:
			a.console.Println(fmt.Sprintf("Project: %s (updated %s)", choice.Name, record.UpdatedAt.Local().Format(timeLayout)))
		case errors.Is(err, state.ErrNotFound):
			a.console.Println(fmt.Sprintf("Project: %s", choice.Name))
		default:
			return fmt.Errorf("failed to read update history: %w", err)
		}

		if len(containers) == 0 {
			a.console.Println("No containers")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "NAME\tSERVICE\tSTATE\tHOSTNAME"); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		for _, c := range containers {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				docker.ContainerName(c),
				docker.ServiceName(c),
				docker.Status(c),
				docker.Hostname(c),
			); err != nil {
				return fmt.Errorf("failed to write container info: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if checkNames {
			for _, m := range update.CheckNames(containers) {
				a.console.Warn("Container and %s mismatch (expected %s, got %s)", m.Kind, m.Container, m.Got)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolP("auto-select", "a", false, "select the composition without prompting when only one matches")
	statusCmd.Flags().BoolP("check-names", "c", false, "report containers whose service or hostname differs from their name")
	rootCmd.AddCommand(statusCmd)
}
