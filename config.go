// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reposcout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/search"
)

// Config is the in-memory representation of config.yaml.
type Config struct {
	Search *search.Config `yaml:"semantic"`
	AI     *ai.Config     `yaml:"embedding"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Search: search.DefaultConfig(),
		AI:     ai.DefaultConfig(),
	}
}

// DefaultConfigPath returns reposcout/config.yaml under the user config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "reposcout", "config.yaml"), nil
}

// LoadConfig reads path over the defaults, so keys missing from the file keep
// their default values. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML in %s: %w", core.ErrConfig, path, err)
	}
	if cfg.Search == nil {
		cfg.Search = search.DefaultConfig()
	}
	if cfg.AI == nil {
		cfg.AI = ai.DefaultConfig()
	}

	cfg.Normalize()

	cfg.Search.CachePath, err = ExpandPath(cfg.Search.CachePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig marshals cfg and writes it to path, creating parent directories.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Normalize fills derived settings. The embedding model falls back to the
// semantic model name.
func (c *Config) Normalize() {
	if c.Search == nil || c.AI == nil {
		return
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = c.Search.Model
	}
	c.AI.Normalize()
}

// Validate checks both sections.
func (c *Config) Validate() error {
	if c.Search == nil || c.AI == nil {
		return fmt.Errorf("%w: semantic and embedding sections are required", core.ErrConfig)
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.AI.Validate()
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
