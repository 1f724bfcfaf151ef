package reposcout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Search.SemanticWeight, cfg.Search.SemanticWeight)
		assert.Equal(t, ai.BackendOpenAI, cfg.AI.Backend)
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		path := writeConfig(t, `
semantic:
  semantic_weight: 0.8
  max_results: 10
embedding:
  embedding_host: http://example.test:8080
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.InDelta(t, 0.8, cfg.Search.SemanticWeight, 1e-6)
		assert.Equal(t, 10, cfg.Search.MaxResults)
		assert.InDelta(t, 0.5, cfg.Search.MinSimilarity, 1e-6)
		assert.Equal(t, "http://example.test:8080/v1", cfg.AI.EmbeddingHost)
		assert.Equal(t, 32, cfg.AI.BatchSize)
	})

	t.Run("embedding model falls back to semantic model", func(t *testing.T) {
		path := writeConfig(t, `
semantic:
  model: custom-model
embedding:
  embedding_model: ""
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "custom-model", cfg.AI.EmbeddingModel)
	})

	t.Run("tilde in cache path is expanded", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		path := writeConfig(t, "semantic:\n  cache_path: ~/scout\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "scout"), cfg.Search.CachePath)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "semantic: [unclosed\n")
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, core.ErrConfig)
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Search.MaxResults = 7
	cfg.AI.Backend = ai.BackendMock

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Search.MaxResults)
	assert.Equal(t, ai.BackendMock, loaded.AI.Backend)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing section", func(c *Config) { c.AI = nil }, true},
		{"bad weight", func(c *Config) { c.Search.SemanticWeight = -0.1 }, true},
		{"bad batch size", func(c *Config) { c.AI.BatchSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a", "b"), got)

	got, err = ExpandPath("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)
}
