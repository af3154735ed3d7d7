package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "dockcli",
	Short: "Interactive helper for docker and docker compose",
	Long: `Dockcli wraps the docker and docker compose command-line tools.

It finds compose projects below a directory, lets you pick one, and recreates it
with freshly pulled images while keeping track of which containers were running.
It can also pull every image that exists locally.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: false,
	},
}

func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		consoleFor(os.Stderr).Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.dockcli/config.yaml, env DOCKCLI_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
