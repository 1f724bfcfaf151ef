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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/core"
)

func init() {
	ai.RegisterBackend(ai.BackendOpenAI, Load)
}

const probeText = "reposcout embedding probe"

// Encoder implements ai.Encoder using an OpenAI-compatible embeddings API.
type Encoder struct {
	embedder *embeddings.EmbedderImpl
	logger   *slog.Logger
}

// NewEncoder creates an encoder for config without contacting the service.
func NewEncoder(config *ai.Config) (*Encoder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Encoder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-encoder"),
	}, nil
}

// Load is the ai.Loader for the "openai" backend. It embeds a probe text so
// that an unreachable service or a model of the wrong dimension fails here
// rather than on the first real request.
func Load(ctx context.Context, config *ai.Config, dimension int) (ai.Encoder, error) {
	enc, err := NewEncoder(config)
	if err != nil {
		return nil, err
	}

	vectors, err := enc.Encode(ctx, []string{probeText})
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", config.EmbeddingHost, err)
	}
	if len(vectors) != 1 || len(vectors[0]) != dimension {
		got := 0
		if len(vectors) > 0 {
			got = len(vectors[0])
		}
		return nil, fmt.Errorf("%w: model %s produces %d values, expected %d",
			core.ErrDimensionMismatch, config.EmbeddingModel, got, dimension)
	}
	return enc, nil
}

// Encode generates embeddings for texts in a single request.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *Encoder) Close() error {
	e.logger.Debug("closing OpenAI encoder")
	return nil
}
