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

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"slices"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Platform identifies the hosting platform a repository lives on.
type Platform string

const (
	PlatformGitHub    Platform = "GitHub"
	PlatformGitLab    Platform = "GitLab"
	PlatformBitbucket Platform = "Bitbucket"
)

// Record is a repository snapshot supplied by an upstream provider.
// The core never mutates a Record it was handed.
type Record struct {
	Platform    Platform  `json:"platform"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Homepage    string    `json:"homepage,omitempty"`
	Language    string    `json:"language,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	License     string    `json:"license,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
	Archived    bool      `json:"archived"`
}

// ID returns the identity key of the record: "platform:full_name".
func (r *Record) ID() string {
	return RecordID(r.Platform, r.FullName)
}

// Equal reports whether r and o describe the same snapshot. Timestamps are
// compared as instants.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Platform == o.Platform &&
		r.FullName == o.FullName &&
		r.Description == o.Description &&
		r.URL == o.URL &&
		r.Homepage == o.Homepage &&
		r.Language == o.Language &&
		slices.Equal(r.Topics, o.Topics) &&
		r.Stars == o.Stars &&
		r.Forks == o.Forks &&
		r.OpenIssues == o.OpenIssues &&
		r.License == o.License &&
		r.CreatedAt.Equal(o.CreatedAt) &&
		r.UpdatedAt.Equal(o.UpdatedAt) &&
		r.PushedAt.Equal(o.PushedAt) &&
		r.Archived == o.Archived
}

// RecordID builds an identity key from its parts.
func RecordID(platform Platform, fullName string) string {
	return string(platform) + ":" + fullName
}

// RecordDoc pairs a record with its optional long-form document (usually a README).
type RecordDoc struct {
	Record *Record `json:"record"`
	Readme string  `json:"readme,omitempty"`
}

// ScoredRecord is a record with an externally computed keyword score.
type ScoredRecord struct {
	Record *Record
	Score  float32
}

// HashText returns a 64-bit BLAKE2b digest of text.
// Identical text always produces the identical hash.
func HashText(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// IndexEntry is the vector index's view of one record.
//
// Vector is never persisted with the metadata; after a load it is empty and
// the vector lives only inside the ANN graph.
type IndexEntry struct {
	ID          string
	Vector      []float32
	GeneratedAt time.Time
	SourceText  string
	TextHash    uint64
}

// NewIndexEntry creates an entry stamped with the current time and the hash of sourceText.
func NewIndexEntry(id string, vector []float32, sourceText string) *IndexEntry {
	return &IndexEntry{
		ID:          id,
		Vector:      vector,
		GeneratedAt: time.Now().UTC(),
		SourceText:  sourceText,
		TextHash:    HashText(sourceText),
	}
}

// TextChanged reports whether text differs from the text this entry was built from.
func (e *IndexEntry) TextChanged(text string) bool {
	return HashText(text) != e.TextHash
}

// PersistedEntry is the on-disk form of an IndexEntry, without the vector.
type PersistedEntry struct {
	ID          string
	GeneratedAt time.Time
	SourceText  string
	TextHash    uint64
}

// Persisted drops the vector from e.
func (e *IndexEntry) Persisted() PersistedEntry {
	return PersistedEntry{
		ID:          e.ID,
		GeneratedAt: e.GeneratedAt,
		SourceText:  e.SourceText,
		TextHash:    e.TextHash,
	}
}

// IndexEntry returns an entry with no vector attached.
func (p PersistedEntry) IndexEntry() *IndexEntry {
	return &IndexEntry{
		ID:          p.ID,
		GeneratedAt: p.GeneratedAt,
		SourceText:  p.SourceText,
		TextHash:    p.TextHash,
	}
}

// IndexStats summarizes a vector index. It is recomputed on every save.
type IndexStats struct {
	TotalCount     int       `json:"total_repositories"`
	IndexSizeBytes int64     `json:"index_size_bytes"`
	LastUpdated    time.Time `json:"last_updated"`
	ModelName      string    `json:"model_name"`
	Dimension      int       `json:"dimension"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewIndexStats returns empty stats for a freshly created index.
func NewIndexStats(modelName string, dimension int) IndexStats {
	now := time.Now().UTC()
	return IndexStats{
		LastUpdated: now,
		ModelName:   modelName,
		Dimension:   dimension,
		CreatedAt:   now,
	}
}

// Update refreshes the count and size after a save.
func (s *IndexStats) Update(count int, sizeBytes int64) {
	s.TotalCount = count
	s.IndexSizeBytes = sizeBytes
	s.LastUpdated = time.Now().UTC()
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Record        *Record
	SemanticScore float32  // cosine similarity
	KeywordScore  *float32 // normalized keyword score, nil for semantic-only results
	HybridScore   float32
	Distance      float32 // 1 - SemanticScore
}

// SemanticOnly builds a result with no keyword component.
func SemanticOnly(record *Record, similarity float32) *SearchResult {
	return &SearchResult{
		Record:        record,
		SemanticScore: similarity,
		HybridScore:   similarity,
		Distance:      1 - similarity,
	}
}

// Hybrid builds a result whose hybrid score is semantic*weight + keyword*(1-weight).
func Hybrid(record *Record, semantic, keyword, weight float32) *SearchResult {
	kw := keyword
	return &SearchResult{
		Record:        record,
		SemanticScore: semantic,
		KeywordScore:  &kw,
		HybridScore:   semantic*weight + keyword*(1-weight),
		Distance:      1 - semantic,
	}
}
