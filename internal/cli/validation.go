package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LoriKarikari/dockcli/internal/core/discovery"
	"github.com/LoriKarikari/dockcli/internal/core/update"
	"github.com/LoriKarikari/dockcli/internal/ui"
)

var (
	errPathNotExist     = errors.New("Path does not exist")
	errPathNotDirectory = errors.New("Path is not a directory")
	errNoCompositions   = errors.New("No compositions available")
)

// validateDir resolves path to an absolute directory.
func validateDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errPathNotExist
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", errPathNotDirectory
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// discover lists the compositions below root, filtered by name when given.
func (a *app) discover(root, name string) ([]discovery.Choice, error) {
	choices, err := discovery.Discover(root, discovery.Options{
		Exclude: a.cfg.Compose.Exclude,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover compositions: %w", err)
	}
	if name != "" {
		choices = discovery.Filter(choices, name)
	}
	if len(choices) == 0 {
		return nil, errNoCompositions
	}
	return choices, nil
}

// selectComposition picks one composition, asking the user unless
// autoSelect is set and there is exactly one.
func (a *app) selectComposition(ctx context.Context, root, name string, autoSelect bool) (discovery.Choice, error) {
	choices, err := a.discover(root, name)
	if err != nil {
		return discovery.Choice{}, err
	}

	choice, ok := discovery.Single(choices)
	if !autoSelect || !ok {
		choice, err = a.prompter().Select(ctx, "Select composition", discovery.BuildOptions(root, choices))
		if errors.Is(err, ui.ErrAborted) {
			return discovery.Choice{}, update.ErrCancelled
		}
		if err != nil {
			return discovery.Choice{}, fmt.Errorf("failed to select composition: %w", err)
		}
	}

	if _, err := os.Stat(choice.ID); err != nil {
		return discovery.Choice{}, fmt.Errorf("File %s does not exist", choice.ID)
	}
	a.logger.Debug("selected composition", "file", choice.ID, "project", choice.Name)
	return choice, nil
}

func compositionArgs(args []string) (path, name string) {
	path = args[0]
	if len(args) > 1 {
		name = args[1]
	}
	return path, name
}
