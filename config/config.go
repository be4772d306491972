// Package config loads the daemon's key bindings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"hotkeyd/hotkey"
)

// Binding ties one key combination to an action.
type Binding struct {
	Name      string        `yaml:"name"`
	Keys      string        `yaml:"keys"`
	Command   string        `yaml:"command,omitempty"`
	Copy      string        `yaml:"copy,omitempty"`
	Hold      string        `yaml:"hold,omitempty"`
	LongPress time.Duration `yaml:"long_press,omitempty"`
	Enabled   *bool         `yaml:"enabled,omitempty"`
}

// IsEnabled treats a missing enabled field as true.
func (b Binding) IsEnabled() bool { return b.Enabled == nil || *b.Enabled }

func (b Binding) Combo() (hotkey.Combo, error) { return hotkey.ParseCombo(b.Keys) }

type Config struct {
	Bindings []Binding `yaml:"bindings"`
}

func Default() *Config {
	return &Config{
		Bindings: []Binding{
			{Name: "greeting", Keys: "Ctrl+Alt+H", Copy: "hello from hotkeyd"},
			{Name: "ping", Keys: "Ctrl+Alt+P"},
		},
	}
}

// ResolvePath picks the bindings file: flag > HOTKEYD_CONFIG > user config dir.
func ResolvePath(flagPath string) (string, error) {
	if flagPath != "" {
		return filepath.Abs(flagPath)
	}
	if env := os.Getenv("HOTKEYD_CONFIG"); env != "" {
		return filepath.Abs(env)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "hotkeyd", "bindings.yaml"), nil
}

// Load reads path. A missing file is created with the default bindings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every binding and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Bindings))
	for i, b := range c.Bindings {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("binding %d: missing name", i+1))
		} else if seen[b.Name] {
			errs = append(errs, fmt.Errorf("binding %q: duplicate name", b.Name))
		}
		seen[b.Name] = true
		if _, err := b.Combo(); err != nil {
			errs = append(errs, fmt.Errorf("binding %q: %w", b.Name, err))
		}
		if b.LongPress < 0 {
			errs = append(errs, fmt.Errorf("binding %q: negative long_press", b.Name))
		}
	}
	return errors.Join(errs...)
}

// Save writes the config atomically (write temp, rename).
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
