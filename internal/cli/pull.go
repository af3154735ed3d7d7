package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LoriKarikari/dockcli/internal/core/registry"
	"github.com/LoriKarikari/dockcli/internal/core/update"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

var pullStyle ui.Style

var pullCmd = &cobra.Command{
	Use:     "pull",
	Aliases: []string{"update"},
	Short:   "Pull every local image",
	Long: `Pull the latest version of every tagged image that exists locally.

Images are pulled one at a time. A failed pull is reported and the next image is
pulled. With --check-digests the remote registry is asked for the current
manifest digest first and images that are already up to date are skipped.`,
	Example: `  # Pull everything, showing docker's progress
  dockcli pull

  # Show a single status line and skip images that did not change
  dockcli pull --style status --check-digests`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		style, err := a.style(cmd)
		if err != nil {
			return err
		}
		checkDigests, err := boolFlag(cmd, "check-digests", a.cfg.Pull.CheckDigests)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := a.dockerClient(ctx, false)
		if err != nil {
			return err
		}

		var resolver update.Resolver
		if checkDigests {
			resolver = registry.NewClient(a.logger)
		}
		puller := update.NewPuller(client, resolver, a.console, a.logger)

		var summary update.Summary
		run := func() error {
			summary, err = puller.Pull(ctx, update.PullOptions{Style: style, CheckDigests: checkDigests})
			return err
		}
		if style == ui.StyleStatus {
			err = a.console.Status("Pulling images", run)
		} else {
			err = run()
		}
		if errors.Is(err, update.ErrNoImages) {
			return errors.New("No images found")
		}
		if err != nil {
			return fmt.Errorf("failed to pull images: %w", err)
		}

		a.console.Println(a.console.Muted(summary.String()))
		return nil
	},
}

func init() {
	pullCmd.Flags().VarP(&pullStyle, "style", "s", "output style ("+ui.StyleNames()+")")
	pullCmd.Flags().Bool("check-digests", false, "skip images whose remote digest matches the local one")
	rootCmd.AddCommand(pullCmd)
}
