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


// Package index provides a persistent approximate nearest neighbor index
// over record embeddings.
//
// VectorIndex maps record identity keys to vectors of one fixed dimension
// and answers cosine-similarity queries through an HNSW graph. Each record
// gets a sequential internal id that is never reused, even after removal.
//
// # On-disk Layout
//
// Save writes four files into the index directory:
//
//	index.hnsw     the graph, in the graph library's own export format
//	metadata.mus   id -> IndexEntry, binary (vectors are not stored here)
//	mappings.json  id -> internal id, the next internal id and an entry count
//	stats.json     IndexStats
//
// Each file is written to a temporary file and renamed into place. The set
// of files is not committed atomically, so mappings.json records the entry
// count and Load rejects directories whose files disagree.
//
// Read-only methods (Search, Metadata, Len, Contains, IDs, Stats) may run
// concurrently with each other. Every mutating method needs exclusive
// access; callers provide the locking.
package index
