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


package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/reposcout/core"
)

// ErrConfigRequired is returned when NewProvider is called with a nil config.
var ErrConfigRequired = errors.New("ai config is required")

// Provider is the lazily initialized EmbeddingProvider.
//
// The encoder is loaded at most once: Initialize takes the write lock and
// re-checks before loading, and embedding calls hold the read lock while the
// encoder runs. A failed load leaves the provider uninitialized so that a
// later Initialize can try again.
type Provider struct {
	config    *Config
	dimension int
	loader    Loader
	logger    *slog.Logger

	mu      sync.RWMutex
	encoder Encoder
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider) error

// WithLoader bypasses the backend registry and loads the encoder with loader.
func WithLoader(loader Loader) ProviderOption {
	return func(p *Provider) error {
		if loader == nil {
			return fmt.Errorf("%w: loader is nil", core.ErrConfig)
		}
		p.loader = loader
		return nil
	}
}

// WithProviderLogger sets the logger. A nil logger selects slog.Default.
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "embedding-provider")
		return nil
	}
}

// NewProvider validates config and returns an uninitialized provider.
// No model is loaded until Initialize or the first embedding call.
func NewProvider(config *Config, opts ...ProviderOption) (*Provider, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config:    config,
		dimension: config.ResolvedDimension(),
		logger:    slog.Default().With("component", "embedding-provider"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.loader == nil {
		loader, err := lookupBackend(config.Backend)
		if err != nil {
			return nil, err
		}
		p.loader = loader
	}
	return p, nil
}

// Initialize loads the encoder if it is not loaded yet.
func (p *Provider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.encoder != nil {
		return nil
	}

	p.logger.Info("loading embedding model",
		"backend", p.config.Backend,
		"model", p.config.EmbeddingModel,
		"dimension", p.dimension)

	encoder, err := p.loader(ctx, p.config, p.dimension)
	if err != nil {
		p.logger.Error("failed to load embedding model", "model", p.config.EmbeddingModel, "err", err)
		return fmt.Errorf("%w: %s: %w", core.ErrModelLoad, p.config.EmbeddingModel, err)
	}
	if encoder == nil {
		return fmt.Errorf("%w: %s: loader returned no encoder", core.ErrModelLoad, p.config.EmbeddingModel)
	}
	p.encoder = encoder
	return nil
}

// IsInitialized reports whether the encoder is loaded.
func (p *Provider) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.encoder != nil
}

// Dimension returns the vector length.
func (p *Provider) Dimension() int {
	return p.dimension
}

// Model returns the model name.
func (p *Provider) Model() string {
	return p.config.EmbeddingModel
}

// EmbedText generates a vector embedding for a single text string.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for texts, preserving order. Texts are
// sent to the encoder in chunks of Config.BatchSize; the call succeeds or
// fails as a whole.
func (p *Provider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if !p.IsInitialized() {
		if err := p.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.encoder == nil {
		// closed between Initialize and here
		return nil, core.ErrModelNotInitialized
	}

	p.logger.Debug("generating embeddings", "count", len(texts))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		end := min(start+p.config.BatchSize, len(texts))
		chunk := texts[start:end]

		vectors, err := p.encoder.Encode(ctx, chunk)
		if err != nil {
			p.logger.Error("failed to generate embeddings", "count", len(chunk), "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		if len(vectors) != len(chunk) {
			return nil, fmt.Errorf("%w: encoder returned %d vectors for %d texts",
				core.ErrEmbedding, len(vectors), len(chunk))
		}
		for _, v := range vectors {
			if len(v) != p.dimension {
				return nil, fmt.Errorf("%w: %w: expected %d, got %d",
					core.ErrEmbedding, core.ErrDimensionMismatch, p.dimension, len(v))
			}
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Close releases the encoder. The provider can be initialized again afterwards.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.encoder == nil {
		return nil
	}
	err := p.encoder.Close()
	p.encoder = nil
	return err
}

var _ EmbeddingProvider = (*Provider)(nil)
