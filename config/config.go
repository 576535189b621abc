// Package config holds the optional TOML-backed defaults shared by
// cmd/ryasm and cmd/ryvm. Grounded on the teacher's config/config.go:
// same load-or-default shape, same platform-specific path resolution,
// shrunk to the handful of knobs RyVM actually has.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk ryvm.toml shape. Its presence only changes
// defaults fed into the assembler/VM; it never changes the wire format.
type Config struct {
	Assembler struct {
		// DefaultMaxStackSize is used when a source file omits
		// .max_stack_size entirely.
		DefaultMaxStackSize uint64 `toml:"default_max_stack_size"`
		WarnUnusedLabels    bool   `toml:"warn_unused_labels"`
	} `toml:"assembler"`

	VM struct {
		TraceOnHalt bool `toml:"trace_on_halt"`
		// PrintFormat controls how SYS 1 (print int) renders: "dec" or "hex".
		PrintFormat string `toml:"print_format"`
	} `toml:"vm"`
}

// Default returns the configuration used when no ryvm.toml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.Assembler.DefaultMaxStackSize = 65536
	cfg.Assembler.WarnUnusedLabels = true
	cfg.VM.TraceOnHalt = false
	cfg.VM.PrintFormat = "dec"
	return cfg
}

// GetConfigPath returns the platform-specific path to ryvm.toml,
// creating its parent directory if necessary.
func GetConfigPath() string {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "ryvm")

	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "ryvm.toml"
		}
		dir = filepath.Join(home, ".config", "ryvm")

	default:
		return "ryvm.toml"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "ryvm.toml"
	}
	return filepath.Join(dir, "ryvm.toml")
}

// Load reads ryvm.toml from its default path, falling back to Default
// when the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads ryvm.toml from path, falling back to Default when the
// file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to the default config path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes c to path as TOML, creating its parent directory if
// necessary.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- caller-controlled config path
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
