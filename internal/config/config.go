/*
Package config
File: config.go
Description:
    Runtime configuration, read from a YAML file. A missing file is not an
    error: every key has a default, so a fresh install runs with no config.

    Lookup order for the file:
    1. $TAPCAT_CONFIG
    2. ~/.tap-cat/config.yaml
*/

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/save"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "TAPCAT_CONFIG"

// Config is the full runtime configuration.
type Config struct {
	ListenAddr       string        `yaml:"listen_addr"`
	ContentDir       string        `yaml:"content_dir"` // Empty uses the embedded content
	DefaultCharacter string        `yaml:"default_character"`
	AccrualInterval  time.Duration `yaml:"accrual_interval"`
	Debug            bool          `yaml:"debug"` // Enables debug credit
	LogLevel         string        `yaml:"log_level"`
	Save             Save          `yaml:"save"`
}

// Save configures persistence.
type Save struct {
	Backend  string        `yaml:"backend"` // file, sqlite or memory
	Path     string        `yaml:"path"`    // Empty derives a path under the config dir
	Key      string        `yaml:"key"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ListenAddr:       ":8081",
		DefaultCharacter: game.DefaultCharacterID,
		AccrualInterval:  500 * time.Millisecond,
		LogLevel:         "info",
		Save: Save{
			Backend:  save.KindFile,
			Key:      save.DefaultKey,
			Debounce: save.DefaultDebounce,
		},
	}
}

// Dir is the directory holding the config file and default saves.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tap-cat"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from Path().
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromPath(p)
}

// LoadFromPath reads the config at path, returning Default() when the file
// does not exist.
func LoadFromPath(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Save.Backend {
	case save.KindFile, save.KindSQLite, save.KindMemory:
	default:
		errs = append(errs, fmt.Errorf("save.backend: unknown backend %q", c.Save.Backend))
	}
	if c.Save.Key == "" {
		errs = append(errs, errors.New("save.key: must not be empty"))
	}
	if c.Save.Debounce <= 0 {
		errs = append(errs, errors.New("save.debounce: must be positive"))
	}
	if c.AccrualInterval <= 0 {
		errs = append(errs, errors.New("accrual_interval: must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SavePath resolves the save location. An explicit save.path wins;
// otherwise the key names a file in Dir().
func (c *Config) SavePath() (string, error) {
	if c.Save.Path != "" {
		return c.Save.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve save dir: %w", err)
	}
	ext := ".json"
	if c.Save.Backend == save.KindSQLite {
		ext = ".db"
	}
	return filepath.Join(dir, c.Save.Key+ext), nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
