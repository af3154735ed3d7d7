package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/LoriKarikari/dockcli/internal/config"
)

// executeCommand runs sub under a fresh root and returns its stdout.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(sub) })

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{Use: "dockcli", SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(sub)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// setupHome points HOME at a temp dir and writes an optional config.
func setupHome(t *testing.T, cfg string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvConfig, "")

	if cfg != "" {
		path := filepath.Join(home, "config.yaml")
		if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Setenv(config.EnvConfig, path)
	}
	return home
}

const missingDocker = "docker: /nonexistent/dockcli-test/docker\n"

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("services: {}\n"), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// composeTree creates:
//
//	root/web/compose.yaml
//	root/db/docker-compose.yml
//	root/tools/cron.yaml
func composeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "web", "compose.yaml"))
	writeFile(t, filepath.Join(root, "db", "docker-compose.yml"))
	writeFile(t, filepath.Join(root, "tools", "cron.yaml"))
	return root
}
