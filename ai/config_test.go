package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/reposcout/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, DefaultModel, cfg.EmbeddingModel)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 384, cfg.ResolvedDimension())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, DefaultModel, cfg.EmbeddingModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithBackend(BackendMock),
			WithEmbeddingHost("http://custom:8080/v1"),
			WithEmbeddingModel(ModelBGEBase),
			WithAPIToken("secret"),
			WithBatchSize(8),
		)

		assert.Equal(t, BackendMock, cfg.Backend)
		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, ModelBGEBase, cfg.EmbeddingModel)
		assert.Equal(t, "secret", cfg.APIToken)
		assert.Equal(t, 8, cfg.BatchSize)
		assert.Equal(t, 768, cfg.ResolvedDimension())
	})

	t.Run("dimension override", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel("nomic-embed-text"), WithDimension(768))
		assert.Equal(t, 768, cfg.ResolvedDimension())
	})
}

func TestDimensionFor(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{ModelMiniLM, 384},
		{ModelBGESmall, 384},
		{ModelBGEBase, 768},
		{"some/other-model", 384},
		{"", 384},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, DimensionFor(tt.model))
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()

			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, "none", cfg.APIToken)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend:        BackendOpenAI,
			EmbeddingHost:  "http://localhost:11434",
			EmbeddingModel: DefaultModel,
			BatchSize:      16,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("mock backend needs no host", func(t *testing.T) {
		cfg := valid()
		cfg.Backend = BackendMock
		cfg.EmbeddingHost = ""
		assert.NoError(t, cfg.Validate())
	})

	invalid := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing backend", func(c *Config) { c.Backend = "" }, "Backend"},
		{"missing host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"negative dimension", func(c *Config) { c.Dimension = -1 }, "Dimension"},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, "BatchSize"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigValidate_Integration(t *testing.T) {
	require.NoError(t, NewConfig().Validate())
	require.NoError(t, DefaultConfig().Validate())
}
