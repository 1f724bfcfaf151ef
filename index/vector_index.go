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


package index

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/poiesic/reposcout/core"
)

const (
	// DefaultConnectivity is the HNSW M parameter.
	DefaultConnectivity = 16
	// DefaultExpansionSearch is the HNSW ef parameter used at query time.
	DefaultExpansionSearch = 64
)

// Match is one search hit.
type Match struct {
	ID         string
	Similarity float32
}

// VectorIndex is a persistent HNSW index keyed by record id.
//
// Live vectors are kept beside the graph. Updates and removals never touch
// the graph in place; they mark it stale and it is rebuilt from the live
// vectors before the next search or save. Mutating methods require exclusive
// access; Search may run concurrently with other searches.
type VectorIndex struct {
	dimension int
	model     string
	dir       string

	graphMu sync.Mutex
	graph   *hnsw.Graph[uint64]
	stale   bool

	vectors  map[uint64][]float32
	keyToID  map[string]uint64
	idToKey  map[uint64]string
	metadata map[string]*core.IndexEntry
	nextID   uint64
	stats    core.IndexStats

	connectivity    int
	expansionSearch int
	logger          *slog.Logger
}

// Option configures a VectorIndex.
type Option func(*VectorIndex)

// WithConnectivity sets the maximum neighbors per graph node (M).
func WithConnectivity(m int) Option {
	return func(v *VectorIndex) {
		if m > 0 {
			v.connectivity = m
		}
	}
}

// WithExpansionSearch sets the candidate list size used at query time (ef).
func WithExpansionSearch(ef int) Option {
	return func(v *VectorIndex) {
		if ef > 0 {
			v.expansionSearch = ef
		}
	}
}

// WithLogger sets the logger. A nil logger selects slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(v *VectorIndex) {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger.With("component", "vector-index")
	}
}

// New creates an empty index of the given dimension that persists to dir.
func New(dimension int, model, dir string, opts ...Option) (*VectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", core.ErrIndex, dimension)
	}
	v := newIndex(dimension, model, dir, opts...)
	v.stats = core.NewIndexStats(model, dimension)
	return v, nil
}

func newIndex(dimension int, model, dir string, opts ...Option) *VectorIndex {
	v := &VectorIndex{
		dimension:       dimension,
		model:           model,
		dir:             dir,
		connectivity:    DefaultConnectivity,
		expansionSearch: DefaultExpansionSearch,
		logger:          slog.Default().With("component", "vector-index"),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.reset()
	return v
}

func (v *VectorIndex) newGraph() *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = v.connectivity
	g.EfSearch = v.expansionSearch
	return g
}

func (v *VectorIndex) reset() {
	v.graph = v.newGraph()
	v.stale = false
	v.vectors = make(map[uint64][]float32)
	v.keyToID = make(map[string]uint64)
	v.idToKey = make(map[uint64]string)
	v.metadata = make(map[string]*core.IndexEntry)
	v.nextID = 0
}

// Add inserts entry, or replaces the vector and metadata of an id that is
// already indexed. A replaced entry keeps its internal id.
func (v *VectorIndex) Add(entry *core.IndexEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("%w: entry has no id", core.ErrIndex)
	}
	if len(entry.Vector) != v.dimension {
		return fmt.Errorf("%w: %s: expected %d, got %d",
			core.ErrDimensionMismatch, entry.ID, v.dimension, len(entry.Vector))
	}

	vec := make([]float32, len(entry.Vector))
	copy(vec, entry.Vector)

	key, exists := v.keyToID[entry.ID]
	switch {
	case exists:
		if !slices.Equal(v.vectors[key], vec) {
			v.vectors[key] = vec
			v.stale = true
		}
	default:
		key = v.nextID
		v.nextID++
		v.keyToID[entry.ID] = key
		v.idToKey[key] = entry.ID
		v.vectors[key] = vec
		if !v.stale {
			v.graph.Add(hnsw.MakeNode(key, vec))
		}
	}

	meta := *entry
	meta.Vector = nil
	v.metadata[entry.ID] = &meta

	v.logger.Debug("indexed entry", "id", entry.ID, "internal_id", key, "updated", exists)
	return nil
}

// AddBatch adds entries in order. It is not atomic: when an entry fails,
// the entries before it stay applied.
func (v *VectorIndex) AddBatch(entries []*core.IndexEntry) error {
	for _, e := range entries {
		if err := v.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes id from the mappings and the metadata. Removing the last
// entry resets the graph.
func (v *VectorIndex) Remove(id string) error {
	key, ok := v.keyToID[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	delete(v.keyToID, id)
	delete(v.idToKey, key)
	delete(v.vectors, key)
	delete(v.metadata, id)

	if len(v.keyToID) == 0 {
		v.graph = v.newGraph()
		v.stale = false
	} else {
		v.stale = true
	}
	return nil
}

// liveGraph returns the graph, rebuilding it from the live vectors first
// when updates or removals left it stale.
func (v *VectorIndex) liveGraph() *hnsw.Graph[uint64] {
	v.graphMu.Lock()
	defer v.graphMu.Unlock()
	if !v.stale {
		return v.graph
	}

	keys := make([]uint64, 0, len(v.vectors))
	for key := range v.vectors {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	g := v.newGraph()
	if len(keys) > 0 {
		nodes := make([]hnsw.Node[uint64], len(keys))
		for i, key := range keys {
			nodes[i] = hnsw.MakeNode(key, v.vectors[key])
		}
		g.Add(nodes...)
	}
	v.graph = g
	v.stale = false
	v.logger.Debug("rebuilt graph", "entries", len(keys))
	return g
}

// Search returns up to k ids ordered by descending cosine similarity to vector.
func (v *VectorIndex) Search(vector []float32, k int) ([]Match, error) {
	if len(vector) != v.dimension {
		return nil, fmt.Errorf("%w: %w: expected %d, got %d",
			core.ErrSearch, core.ErrDimensionMismatch, v.dimension, len(vector))
	}
	if k <= 0 || len(v.keyToID) == 0 {
		return []Match{}, nil
	}

	want := min(k, len(v.keyToID))
	nodes := v.liveGraph().Search(vector, k)

	matches := make([]Match, 0, len(nodes))
	for _, node := range nodes {
		id, ok := v.idToKey[node.Key]
		if !ok {
			continue
		}
		matches = append(matches, Match{
			ID:         id,
			Similarity: DistanceToSimilarity(hnsw.CosineDistance(vector, node.Value)),
		})
	}

	// The graph is approximate; fall back to an exact scan when it comes
	// back short of what the index can provide.
	if len(matches) < want {
		v.logger.Debug("graph search returned short, scanning", "got", len(matches), "want", want)
		matches = v.scan(vector)
	}

	sortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (v *VectorIndex) scan(vector []float32) []Match {
	matches := make([]Match, 0, len(v.keyToID))
	for id, key := range v.keyToID {
		vec, ok := v.vectors[key]
		if !ok {
			continue
		}
		matches = append(matches, Match{ID: id, Similarity: CosineSimilarity(vector, vec)})
	}
	return matches
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
}

// Metadata returns a copy of the entry for id. Vector is always empty.
func (v *VectorIndex) Metadata(id string) (core.IndexEntry, bool) {
	e, ok := v.metadata[id]
	if !ok {
		return core.IndexEntry{}, false
	}
	return *e, true
}

// Contains reports whether id is indexed.
func (v *VectorIndex) Contains(id string) bool {
	_, ok := v.keyToID[id]
	return ok
}

// Len returns the number of indexed entries.
func (v *VectorIndex) Len() int {
	return len(v.keyToID)
}

// IsEmpty reports whether the index has no entries.
func (v *VectorIndex) IsEmpty() bool {
	return len(v.keyToID) == 0
}

// IDs returns every indexed id in sorted order.
func (v *VectorIndex) IDs() []string {
	ids := make([]string, 0, len(v.keyToID))
	for id := range v.keyToID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dimension returns the fixed vector length.
func (v *VectorIndex) Dimension() int {
	return v.dimension
}

// Model returns the name of the model whose vectors this index holds.
func (v *VectorIndex) Model() string {
	return v.model
}

// Dir returns the persistence directory.
func (v *VectorIndex) Dir() string {
	return v.dir
}

// Stats returns the statistics as of the last save, with the live entry count.
func (v *VectorIndex) Stats() core.IndexStats {
	s := v.stats
	s.TotalCount = len(v.keyToID)
	return s
}

// Clear removes every entry and resets the internal id counter.
// Dimension and model are preserved.
func (v *VectorIndex) Clear() {
	v.reset()
	v.stats.TotalCount = 0
	v.logger.Info("cleared vector index")
}
