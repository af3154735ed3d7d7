package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LoriKarikari/dockcli/internal/core/state"
)

const timeLayout = "2006-01-02 15:04:05"

var listCmd = &cobra.Command{
	Use:   "list <path> [name]",
	Short: "List compose projects",
	Long: `List the compose projects found below <path> together with the time of
their last successful update.`,
	Example: `  # List every project below /srv
  dockcli list /srv

  # List projects whose name contains "web"
  dockcli list /srv web`,
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

		choices, err := a.discover(root, name)
		if err != nil {
			return err
		}

		store := a.store()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "PROJECT\tFILE\tLAST UPDATE"); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		for _, choice := range choices {
			file, err := filepath.Rel(root, choice.ID)
			if err != nil {
				file = choice.ID
			}

			lastUpdate := "never"
			record, err := store.Get(choice.Name)
			switch {
			case err == nil:
				lastUpdate = record.UpdatedAt.Local().Format(timeLayout)
			case !errors.Is(err, state.ErrNotFound):
				return fmt.Errorf("failed to read update history: %w", err)
			}

			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", choice.Name, file, lastUpdate); err != nil {
				return fmt.Errorf("failed to write project info: %w", err)
			}
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
