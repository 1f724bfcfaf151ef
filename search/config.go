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


package search

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/preprocess"
)

// Config holds configuration for the hybrid search engine.
type Config struct {
	// Enabled turns semantic search on. A disabled engine returns ErrDisabled.
	Enabled bool `yaml:"enabled"`

	// Model is the embedding model name recorded in the index stats.
	Model string `yaml:"model"`

	// SemanticWeight is w in hybrid = semantic*w + keyword*(1-w).
	// Default: 0.6
	SemanticWeight float32 `yaml:"semantic_weight"`

	// MinSimilarity drops semantic hits below this cosine similarity.
	// Default: 0.5
	MinSimilarity float32 `yaml:"min_similarity"`

	// MaxResults caps every semantic result list.
	// Default: 50
	MaxResults int `yaml:"max_results"`

	// AutoBuild rebuilds an empty index from the record store on open.
	AutoBuild bool `yaml:"auto_build"`

	// CachePath is the directory holding the index and record store.
	CachePath string `yaml:"cache_path"`

	// MaxCacheSizeMB bounds the record store's block cache.
	MaxCacheSizeMB int `yaml:"max_cache_size_mb"`

	// QueryCacheSize is the number of query embeddings kept in memory.
	// Zero disables the cache.
	QueryCacheSize int `yaml:"query_cache_size"`

	// MaxTokens is the word budget for canonical text.
	MaxTokens int `yaml:"max_tokens"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEnabled enables or disables semantic search.
func WithEnabled(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Enabled = enabled
	}
}

// WithModel sets the embedding model name.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithSemanticWeight sets the hybrid weight.
func WithSemanticWeight(w float32) ConfigOption {
	return func(c *Config) {
		c.SemanticWeight = w
	}
}

// WithMinSimilarity sets the similarity threshold.
func WithMinSimilarity(s float32) ConfigOption {
	return func(c *Config) {
		c.MinSimilarity = s
	}
}

// WithMaxResults sets the result cap.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithAutoBuild toggles rebuilding an empty index on open.
func WithAutoBuild(auto bool) ConfigOption {
	return func(c *Config) {
		c.AutoBuild = auto
	}
}

// WithCachePath sets the cache directory.
func WithCachePath(path string) ConfigOption {
	return func(c *Config) {
		c.CachePath = path
	}
}

// WithQueryCacheSize sets the number of memoized query embeddings.
func WithQueryCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.QueryCacheSize = n
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		Model:          ai.DefaultModel,
		SemanticWeight: 0.6,
		MinSimilarity:  0.5,
		MaxResults:     50,
		AutoBuild:      true,
		CachePath:      DefaultCachePath(),
		MaxCacheSizeMB: 500,
		QueryCacheSize: 256,
		MaxTokens:      preprocess.DefaultMaxTokens,
	}
}

// NewConfig creates a new Config with the given options applied to defaults.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// DefaultCachePath returns reposcout/semantic under the user cache directory
// ($XDG_CACHE_HOME on Linux).
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "reposcout", "semantic")
}

// IndexPath is the directory the vector index is saved to.
func (c *Config) IndexPath() string {
	return filepath.Join(c.CachePath, "index")
}

// RecordsPath is the directory of the record store.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.CachePath, "records")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch {
	case c.SemanticWeight < 0 || c.SemanticWeight > 1:
		return fmt.Errorf("%w: semantic_weight must be within [0, 1], got %v", core.ErrConfig, c.SemanticWeight)
	case c.MinSimilarity < 0 || c.MinSimilarity > 1:
		return fmt.Errorf("%w: min_similarity must be within [0, 1], got %v", core.ErrConfig, c.MinSimilarity)
	case c.MaxResults < 1:
		return fmt.Errorf("%w: max_results must be at least 1, got %d", core.ErrConfig, c.MaxResults)
	case c.CachePath == "":
		return fmt.Errorf("%w: cache_path is required", core.ErrConfig)
	case c.Model == "":
		return fmt.Errorf("%w: model is required", core.ErrConfig)
	case c.QueryCacheSize < 0:
		return fmt.Errorf("%w: query_cache_size must not be negative", core.ErrConfig)
	case c.MaxCacheSizeMB < 0:
		return fmt.Errorf("%w: max_cache_size_mb must not be negative", core.ErrConfig)
	}
	return nil
}
