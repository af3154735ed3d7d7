package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const stateFileName = "state.json"

var ErrNotFound = errors.New("no update recorded")

// Record describes the last successful update of a compose project.
type Record struct {
	Project   string    `json:"project"`
	File      string    `json:"file"`
	UpdatedAt time.Time `json:"updated_at"`
	Restored  []string  `json:"restored,omitempty"`
}

type Store struct {
	stateDir string
}

func NewStore(stateDir string) *Store {
	return &Store{
		stateDir: stateDir,
	}
}

func (s *Store) Record(r Record) error {
	if r.Project == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if err := s.ensureStateDir(); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	state, err := s.load()
	if err != nil {
		return err
	}

	state[r.Project] = r

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.stateFile(), data, 0o600)
}

func (s *Store) Get(project string) (Record, error) {
	state, err := s.load()
	if err != nil {
		return Record{}, err
	}

	r, exists := state[project]
	if !exists {
		return Record{}, fmt.Errorf("%w for '%s'", ErrNotFound, project)
	}

	return r, nil
}

// List returns every record ordered by project name.
func (s *Store) List() ([]Record, error) {
	state, err := s.load()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(state))
	for _, r := range state {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Project < records[j].Project })

	return records, nil
}

func (s *Store) stateFile() string {
	return filepath.Join(s.stateDir, stateFileName)
}

func (s *Store) ensureStateDir() error {
	return os.MkdirAll(s.stateDir, 0o750)
}

func (s *Store) load() (map[string]Record, error) {
	state := make(map[string]Record)

	data, err := os.ReadFile(s.stateFile())
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state == nil {
		state = make(map[string]Record)
	}

	return state, nil
}
