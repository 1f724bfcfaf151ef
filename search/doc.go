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


// Package search provides hybrid semantic and keyword search over repository records.
//
// The Engine owns the embedding provider, a persistent vector index and an
// in-memory cache of indexed records. Indexing runs
// preprocess, embed, index add and cache upsert. A query is preprocessed,
// embedded and searched in the index, then filtered by MinSimilarity and
// mapped through the record cache.
//
// HybridSearch folds in keyword scores computed elsewhere (for example with
// package bm25). Keyword scores are normalized by the batch maximum and
// combined linearly with the semantic score:
//
//	hybrid = semantic*w + keyword*(1-w)
//
// Results are ordered by score, then by record id.
package search
