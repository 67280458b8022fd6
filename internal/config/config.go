// Package config resolves configuration: XDG directories, the optional
// config.toml file, environment overrides and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"triage/internal/task"
)

const (
	// AppName is the application directory name.
	AppName = "triage"

	// ConfigFile is the optional configuration filename inside the config dir.
	ConfigFile = "config.toml"

	// StoreFile is the default store filename inside the data dir.
	StoreFile = "tasks.csv"

	// StoreEnv overrides the store path.
	StoreEnv = "TRIAGE_STORE"

	// DefaultOwner is who acts next on a task added without an owner.
	DefaultOwner = "me"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// StorePath is the task store file.
	StorePath string

	// DefaultPriority is assigned to tasks added without a priority.
	DefaultPriority task.Priority

	// DefaultOwner is assigned to tasks added without an owner.
	DefaultOwner string

	// Now is the instant the command started. It is read once per run and
	// fixes "today" for every date comparison.
	Now time.Time

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	Store           string `toml:"store"`
	DefaultPriority string `toml:"default_priority"`
	DefaultOwner    string `toml:"default_owner"`
}

// New creates a Config for the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/triage or $HOME/.config/triage.
// Settings come from config.toml when present; TRIAGE_STORE overrides the
// store path from the file.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:             dir,
		DefaultPriority: task.DefaultPriority,
		DefaultOwner:    DefaultOwner,
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if env := os.Getenv(StoreEnv); env != "" {
		cfg.StorePath = expandPath(env)
	}
	if cfg.StorePath == "" {
		cfg.StorePath = filepath.Join(DefaultDataDir(), StoreFile)
	}
	return cfg, nil
}

// SetStorePath overrides the store path, e.g. from a command-line flag.
// Empty values are ignored.
func (c *Config) SetStorePath(path string) {
	if path != "" {
		c.StorePath = expandPath(path)
	}
}

// Today returns the calendar date of Now in local time.
func (c *Config) Today() task.Date {
	return task.DateOf(c.Now.Local())
}

// Defaults returns the values applied to fields a new task leaves empty.
func (c *Config) Defaults() task.Defaults {
	return task.Defaults{Priority: c.DefaultPriority, Owner: c.DefaultOwner}
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

func (c *Config) loadFile() error {
	var fc fileConfig
	md, err := toml.DecodeFile(c.FilePath(), &fc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", c.FilePath(), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parse %s: unknown key %q", c.FilePath(), undecoded[0].String())
	}

	if fc.Store != "" {
		store := expandPath(fc.Store)
		if !filepath.IsAbs(store) {
			store = filepath.Join(c.Dir, store)
		}
		c.StorePath = store
	}
	if fc.DefaultPriority != "" {
		p, err := task.ParsePriority(fc.DefaultPriority)
		if err != nil {
			return fmt.Errorf("parse %s: default_priority %q: %w", c.FilePath(), fc.DefaultPriority, err)
		}
		c.DefaultPriority = p
	}
	if fc.DefaultOwner != "" {
		c.DefaultOwner = strings.TrimSpace(fc.DefaultOwner)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultDataDir returns the default directory for the task store.
// Uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}
	return expanded
}
