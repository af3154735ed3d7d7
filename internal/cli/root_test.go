package cli

import (
	"testing"
)

func TestRootCmdCommands(t *testing.T) {
	want := []string{"compose", "pull", "list", "status", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}

	cmd, _, err := rootCmd.Find([]string{"update"})
	if err != nil || cmd != pullCmd {
		t.Errorf("update should resolve to pull, got %v (%v)", cmd, err)
	}
}

func TestRootCmdPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
	if f := rootCmd.PersistentFlags().ShorthandLookup("v"); f == nil || f.Name != "verbose" {
		t.Error("-v should be shorthand for --verbose")
	}
}
