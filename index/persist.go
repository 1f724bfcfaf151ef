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
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/reposcout/core"
)

// File names inside an index directory.
const (
	GraphFile    = "index.hnsw"
	MetadataFile = "metadata.mus"
	MappingsFile = "mappings.json"
	StatsFile    = "stats.json"
	lockFile     = ".lock"
)

// FormatVersion is written to mappings.json. Load rejects other versions.
const FormatVersion = 1

type mappings struct {
	FormatVersion int               `json:"format_version"`
	NextID        uint64            `json:"next_id"`
	EntryCount    int               `json:"entry_count"`
	Dimension     int               `json:"dimension"`
	IDs           map[string]uint64 `json:"ids"`
}

// Save writes the index to its directory and refreshes the statistics.
func (v *VectorIndex) Save() error {
	if v.dir == "" {
		return fmt.Errorf("%w: index has no directory", core.ErrIndex)
	}
	if err := os.MkdirAll(v.dir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(v.dir, lockFile))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock index directory: %w", err)
	}
	defer lock.Unlock()

	if err := writeFileAtomic(filepath.Join(v.dir, GraphFile), v.liveGraph().Export); err != nil {
		return fmt.Errorf("%w: write graph: %w", core.ErrIndex, err)
	}

	blob, err := v.marshalMetadata()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(v.dir, MetadataFile), writeBytes(blob)); err != nil {
		return err
	}

	m := mappings{
		FormatVersion: FormatVersion,
		NextID:        v.nextID,
		EntryCount:    len(v.keyToID),
		Dimension:     v.dimension,
		IDs:           v.keyToID,
	}
	if err := writeJSON(filepath.Join(v.dir, MappingsFile), m); err != nil {
		return err
	}

	size, err := dirSize(v.dir, GraphFile, MetadataFile, MappingsFile)
	if err != nil {
		return err
	}
	v.stats.ModelName = v.model
	v.stats.Dimension = v.dimension
	v.stats.Update(len(v.keyToID), size)
	if err := writeJSON(filepath.Join(v.dir, StatsFile), v.stats); err != nil {
		return err
	}

	v.logger.Info("saved vector index", "dir", v.dir, "entries", len(v.keyToID), "size_bytes", size)
	return nil
}

// Load reads an index previously written by Save. model names the index when
// stats.json is missing or unreadable.
func Load(dir string, dimension int, model string, opts ...Option) (*VectorIndex, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, dir)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", core.ErrCorruptedIndex, dir)
	}

	lock := flock.New(filepath.Join(dir, lockFile))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock index directory: %w", err)
	}
	defer lock.Unlock()

	var m mappings
	if err := readJSON(filepath.Join(dir, MappingsFile), &m); err != nil {
		return nil, err
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", core.ErrCorruptedIndex, m.FormatVersion)
	}
	if m.Dimension != 0 && m.Dimension != dimension {
		return nil, fmt.Errorf("%w: index has dimension %d, expected %d",
			core.ErrDimensionMismatch, m.Dimension, dimension)
	}

	blob, err := readArtifact(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}
	metadata, err := unmarshalMetadata(blob)
	if err != nil {
		return nil, err
	}

	stats, statsErr := readStats(filepath.Join(dir, StatsFile))

	if statsErr == nil && stats.ModelName != "" {
		model = stats.ModelName
	}
	v := newIndex(dimension, model, dir, opts...)

	f, err := os.Open(filepath.Join(dir, GraphFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrCorruptedIndex, GraphFile, err)
	}
	defer f.Close()
	if err := v.graph.Import(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrCorruptedIndex, GraphFile, err)
	}

	if n := len(m.IDs); n != m.EntryCount || n != len(metadata) || n != v.graph.Len() {
		return nil, fmt.Errorf("%w: entry counts disagree (mappings %d/%d, metadata %d, graph %d)",
			core.ErrCorruptedIndex, n, m.EntryCount, len(metadata), v.graph.Len())
	}
	if v.graph.Len() > 0 && v.graph.Dims() != dimension {
		return nil, fmt.Errorf("%w: graph has dimension %d, expected %d",
			core.ErrDimensionMismatch, v.graph.Dims(), dimension)
	}

	for id, key := range m.IDs {
		if _, ok := metadata[id]; !ok {
			return nil, fmt.Errorf("%w: %s has no metadata", core.ErrCorruptedIndex, id)
		}
		if key >= m.NextID {
			return nil, fmt.Errorf("%w: internal id %d not below next id %d", core.ErrCorruptedIndex, key, m.NextID)
		}
		vec, ok := v.graph.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no vector in the graph", core.ErrCorruptedIndex, id)
		}
		v.keyToID[id] = key
		v.idToKey[key] = id
		v.vectors[key] = vec
	}
	v.metadata = metadata
	v.nextID = m.NextID

	if statsErr != nil {
		v.logger.Warn("index stats unavailable, starting fresh", "dir", dir, "err", statsErr)
		v.stats = core.NewIndexStats(model, dimension)
		v.stats.TotalCount = len(v.keyToID)
	} else {
		v.stats = stats
	}

	v.logger.Info("loaded vector index", "dir", dir, "entries", len(v.keyToID), "model", model)
	return v, nil
}

// Exists reports whether dir holds a saved index.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, MappingsFile))
	return err == nil
}

func (v *VectorIndex) marshalMetadata() ([]byte, error) {
	ids := make([]string, 0, len(v.metadata))
	for id := range v.metadata {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	size := varint.Int.Size(len(ids))
	entries := make([]core.PersistedEntry, len(ids))
	for i, id := range ids {
		entries[i] = v.metadata[id].Persisted()
		size += core.PersistedEntryMUS.Size(entries[i])
	}

	bs := make([]byte, size)
	n := varint.Int.Marshal(len(ids), bs)
	for _, entry := range entries {
		n += core.PersistedEntryMUS.Marshal(entry, bs[n:])
	}
	if n != size {
		return nil, fmt.Errorf("%w: metadata size %d, wrote %d", core.ErrSerialization, size, n)
	}
	return bs, nil
}

func unmarshalMetadata(bs []byte) (map[string]*core.IndexEntry, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata header: %w", core.ErrSerialization, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: metadata header: %w", core.ErrSerialization, core.ErrNegativeLength)
	}

	out := make(map[string]*core.IndexEntry, min(count, len(bs)))
	for i := 0; i < count; i++ {
		entry, m, err := core.PersistedEntryMUS.Unmarshal(bs[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: metadata entry %d: %w", core.ErrSerialization, i, err)
		}
		n += m
		out[entry.ID] = entry.IndexEntry()
	}
	if n != len(bs) {
		return nil, fmt.Errorf("%w: %d trailing bytes in metadata", core.ErrSerialization, len(bs)-n)
	}
	return out, nil
}

func readArtifact(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrCorruptedIndex, filepath.Base(path), err)
	}
	return bs, nil
}

func readJSON(path string, v any) error {
	bs, err := readArtifact(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrSerialization, filepath.Base(path), err)
	}
	return nil
}

func readStats(path string) (core.IndexStats, error) {
	var stats core.IndexStats
	bs, err := os.ReadFile(path)
	if err != nil {
		return stats, err
	}
	err = json.Unmarshal(bs, &stats)
	return stats, err
}

func writeJSON(path string, v any) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", core.ErrSerialization, filepath.Base(path), err)
	}
	return writeFileAtomic(path, writeBytes(bs))
}

func writeBytes(bs []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(bs)
		return err
	}
}

// writeFileAtomic writes through a temporary file in the same directory and
// renames it over path, so readers never observe a partially written file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func dirSize(dir string, names ...string) (int64, error) {
	var total int64
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
