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


// Package ai provides the embedding abstraction used by reposcout.
//
// The search engine depends on the interfaces defined here rather than on a
// concrete model, so the encoder can be swapped without touching search code.
//
// # Interfaces
//
//   - Embedder: generates vector embeddings from text
//   - EmbeddingProvider: an Embedder with a lazily loaded model, a fixed
//     dimension and an explicit lifecycle
//   - Encoder: the opaque model behind a provider
//
// # Backends
//
// Encoders are created by a Loader chosen by name from a registry, in the
// style of database/sql drivers. Backend packages register themselves from
// init:
//
//   - ai/openai: OpenAI-compatible embedding APIs (Ollama, LocalAI, OpenAI)
//   - ai/mock: deterministic hash vectors for tests and offline use
//
// # Lazy Initialization
//
// Provider loads its encoder on the first call to Initialize, EmbedText or
// EmbedTexts. Concurrent first callers block on a write lock; exactly one of
// them loads the model and the rest see it loaded. A load failure is
// reported as core.ErrModelLoad and is not retried automatically.
//
// # Usage Example
//
//	import _ "github.com/poiesic/reposcout/ai/openai"
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel(ai.ModelBGESmall))
//	provider, err := ai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.EmbedText(ctx, "structured logging library")
//
// # Model Dimensions
//
// DimensionFor maps the known model names to their vector length; any other
// model is assumed to produce 384-dimensional vectors unless
// Config.Dimension says otherwise.
package ai
