package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// https://docs.docker.com/compose/intro/compose-application-model/#the-compose-file
var composeFiles = []string{
	"compose.yaml", "compose.yml",
	"docker-compose.yaml", "docker-compose.yml",
}

var extensions = []string{".yaml", ".yml"}

// Choice is a selectable compose file. ID is the absolute file path and Name
// the project name it is run under.
type Choice struct {
	ID   string
	Name string
}

func (c Choice) String() string {
	return c.Name
}

type Options struct {
	Exclude []string
	Logger  *slog.Logger
}

// Discover walks root looking for compose files. A directory holding a
// canonical compose file is a single project named after the directory and
// is not descended into; any other YAML file is offered on its own.
// Symlinked directories are followed, each target at most once.
func Discover(root string, opts Options) ([]Choice, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	w := &walker{root: root, opts: opts, visited: make(map[string]bool)}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		w.visited[real] = true
	}
	return w.walk(root, entries), nil
}

type walker struct {
	root    string
	opts    Options
	visited map[string]bool
}

func (w *walker) walk(dir string, entries []os.DirEntry) []Choice {
	files := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		if !isYAML(entry.Name()) || w.isDir(filepath.Join(dir, entry.Name()), entry) {
			return "", false
		}
		return entry.Name(), true
	})

	if composeFile, ok := canonicalFile(files); ok {
		return []Choice{{ID: filepath.Join(dir, composeFile), Name: filepath.Base(dir)}}
	}

	choices := lo.Map(files, func(file string, _ int) Choice {
		return Choice{ID: filepath.Join(dir, file), Name: fileName(file)}
	})

	for _, entry := range entries {
		sub := filepath.Join(dir, entry.Name())
		if !w.isDir(sub, entry) {
			continue
		}

		if w.excluded(sub) {
			w.opts.Logger.Debug("skipping excluded directory", "path", sub)
			continue
		}

		real, err := filepath.EvalSymlinks(sub)
		if err != nil {
			w.opts.Logger.Debug("skipping unresolvable directory", "path", sub, "error", err)
			continue
		}
		if w.visited[real] {
			w.opts.Logger.Debug("skipping visited directory", "path", sub, "target", real)
			continue
		}
		w.visited[real] = true

		subEntries, err := os.ReadDir(sub)
		if err != nil {
			w.opts.Logger.Debug("skipping unreadable directory", "path", sub, "error", err)
			continue
		}
		choices = append(choices, w.walk(sub, subEntries)...)
	}

	return choices
}

// isDir reports whether entry is a directory, following symlinks.
func (w *walker) isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		w.opts.Logger.Debug("skipping broken symlink", "path", path, "error", err)
		return false
	}
	return info.IsDir()
}

func (w *walker) excluded(dir string) bool {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return lo.SomeBy(w.opts.Exclude, func(pattern string) bool {
		matched, _ := doublestar.Match(pattern, rel)
		return matched
	})
}

func canonicalFile(files []string) (string, bool) {
	return lo.Find(composeFiles, func(name string) bool {
		return lo.Contains(files, name)
	})
}

func isCanonical(path string) bool {
	return lo.Contains(composeFiles, filepath.Base(path))
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return lo.Contains(extensions, ext)
}

func fileName(name string) string {
	trimmed := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimSpace(trimmed) == "" {
		return name
	}
	return trimmed
}

// Filter keeps the choices whose name contains name, ignoring case. When any
// choice matches exactly only the exact matches are kept.
func Filter(choices []Choice, name string) []Choice {
	needle := strings.ToLower(name)
	contains := lo.Filter(choices, func(c Choice, _ int) bool {
		return strings.Contains(strings.ToLower(c.Name), needle)
	})

	equals := lo.Filter(contains, func(c Choice, _ int) bool {
		return strings.EqualFold(c.Name, name)
	})
	if len(equals) > 0 {
		return equals
	}
	return contains
}

func Single(choices []Choice) (Choice, bool) {
	if len(choices) != 1 {
		return Choice{}, false
	}
	return choices[0], true
}

// Option is a picker entry.
type Option struct {
	Label  string
	Group  string
	Choice Choice
}

// BuildOptions orders choices by path and labels each one with the directory
// holding its project, relative to root.
func BuildOptions(root string, choices []Choice) []Option {
	sorted := make([]Choice, len(choices))
	copy(sorted, choices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return lo.Map(sorted, func(c Choice, _ int) Option {
		group := groupOf(root, c.ID)
		label := c.Name
		if group != "" {
			label = group + " › " + c.Name
		}
		return Option{Label: label, Group: group, Choice: c}
	})
}

func groupOf(root, path string) string {
	dir := filepath.Dir(path)
	if isCanonical(path) {
		dir = filepath.Dir(dir)
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
