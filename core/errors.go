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


package core

import "errors"

// Search subsystem errors. Callers match them with errors.Is; concrete
// failures wrap one of these with context.
var (
	// ErrModelLoad indicates the embedding model could not be loaded.
	// It stays fatal until Initialize is called again.
	ErrModelLoad = errors.New("failed to load embedding model")

	// ErrEmbedding indicates a single embedding call failed.
	ErrEmbedding = errors.New("failed to generate embeddings")

	// ErrIndex indicates an ANN add, remove or create failure.
	ErrIndex = errors.New("vector index error")

	// ErrSerialization indicates metadata or mapping encode/decode failure.
	ErrSerialization = errors.New("serialization error")

	// ErrIndexNotFound indicates the index directory does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCorruptedIndex indicates a required index artifact is missing or unreadable.
	ErrCorruptedIndex = errors.New("index is corrupted or invalid")

	// ErrNotFound indicates the record is not present in the index or store.
	ErrNotFound = errors.New("record not found")

	// ErrConfig indicates invalid configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrPreprocessing indicates text was empty after canonicalization.
	ErrPreprocessing = errors.New("text preprocessing failed")

	// ErrSearch indicates a search operation failed.
	ErrSearch = errors.New("search operation failed")

	// ErrModelNotInitialized indicates an encoder was used before it was loaded.
	ErrModelNotInitialized = errors.New("model not initialized")

	// ErrDimensionMismatch indicates a vector length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrNegativeLength indicates a decoded length prefix was negative.
	ErrNegativeLength = errors.New("negative length")
)
