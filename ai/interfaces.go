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

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice has the same length and order as texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingProvider is an Embedder with an explicit model lifecycle.
//
// The first embedding call initializes the model when Initialize has not
// been called yet, so callers only need Initialize to surface load errors
// early.
type EmbeddingProvider interface {
	Embedder

	// Initialize loads the model. It is idempotent and safe to call concurrently;
	// only one load ever runs.
	Initialize(ctx context.Context) error

	// IsInitialized reports whether the model is loaded.
	IsInitialized() bool

	// Dimension returns the length of every vector this provider produces.
	Dimension() int

	// Model returns the model name.
	Model() string

	// Close releases the loaded model.
	Close() error
}

// Encoder is the opaque text-to-vector model behind a provider.
// Encode must return exactly one vector per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// Loader creates a ready-to-use Encoder for cfg. dimension is the vector
// length the provider expects from the model.
type Loader func(ctx context.Context, cfg *Config, dimension int) (Encoder, error)
