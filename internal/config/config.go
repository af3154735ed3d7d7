package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig      = "DOCKCLI_CONFIG"
	configFileName = "config.yaml"
)

type Config struct {
	Docker   string  `yaml:"docker" validate:"required"`
	Style    string  `yaml:"style" validate:"oneof=none quiet status"`
	PageSize int     `yaml:"page_size" validate:"min=1,max=50"`
	Compose  Compose `yaml:"compose"`
	Pull     Pull    `yaml:"pull"`
}

type Compose struct {
	AutoSelect       bool     `yaml:"auto_select"`
	SkipConfirmation bool     `yaml:"skip_confirmation"`
	RestoreState     bool     `yaml:"restore_state"`
	CheckNames       bool     `yaml:"check_names"`
	Exclude          []string `yaml:"exclude" validate:"dive,required"`
}

type Pull struct {
	CheckDigests bool `yaml:"check_digests"`
}

func Default() Config {
	return Config{
		Docker:   "docker",
		Style:    "none",
		PageSize: 10,
		Compose: Compose{
			Exclude: []string{"**/.git", "**/node_modules"},
		},
	}
}

func GetStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dockcli"), nil
}

// Path returns the config file location: explicit, then $DOCKCLI_CONFIG,
// then the state directory.
func Path(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, configFileName), nil
}

// Load reads the config file at path. A missing file yields the defaults
// unless the path was given explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
