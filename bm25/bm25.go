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


// Package bm25 implements Okapi BM25 keyword scoring over a fixed corpus snapshot.
//
// A Scorer captures document frequencies and the average document length at
// construction time. It is never updated incrementally; build a new Scorer
// whenever the corpus changes.
package bm25

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/reposcout/core"
)

const (
	// K1 controls term frequency saturation.
	K1 = 1.2
	// B controls document length normalization.
	B = 0.75
)

// Scorer holds corpus statistics. It is immutable and safe for concurrent use.
type Scorer struct {
	docFreq   map[string]int
	totalDocs int
	avgDocLen float64
}

// New builds a Scorer from raw document texts.
func New(docs []string) *Scorer {
	s := &Scorer{docFreq: make(map[string]int)}

	totalLen := 0
	for _, doc := range docs {
		tokens := Tokenize(doc)
		totalLen += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			s.docFreq[tok]++
		}
	}

	s.totalDocs = len(docs)
	s.avgDocLen = 1
	if s.totalDocs > 0 {
		s.avgDocLen = float64(totalLen) / float64(s.totalDocs)
	}
	return s
}

// NewFromRecords builds a Scorer over the keyword text of each record.
func NewFromRecords(records []*core.Record) *Scorer {
	docs := make([]string, len(records))
	for i, r := range records {
		docs[i] = RecordText(r)
	}
	return New(docs)
}

// TotalDocs returns the corpus size N.
func (s *Scorer) TotalDocs() int {
	return s.totalDocs
}

// AvgDocLen returns the average document length in tokens.
func (s *Scorer) AvgDocLen() float64 {
	return s.avgDocLen
}

// DocFreq returns the number of documents containing term.
func (s *Scorer) DocFreq(term string) int {
	return s.docFreq[term]
}

// Score returns the BM25 score of doc for query. Query terms absent from
// doc contribute nothing; an empty doc or query scores 0.
func (s *Scorer) Score(doc, query string) float64 {
	docTokens := Tokenize(doc)
	queryTokens := Tokenize(query)
	if len(docTokens) == 0 || len(queryTokens) == 0 {
		return 0
	}

	tf := make(map[string]int, len(docTokens))
	for _, tok := range docTokens {
		tf[tok]++
	}

	docLen := float64(len(docTokens))
	norm := K1 * (1 - B + B*docLen/s.avgDocLen)

	var score float64
	for _, term := range queryTokens {
		freq := float64(tf[term])
		if freq == 0 {
			continue
		}
		n := float64(s.docFreq[term])
		idf := math.Log((float64(s.totalDocs)-n+0.5)/(n+0.5) + 1)
		score += idf * (freq * (K1 + 1)) / (freq + norm)
	}
	return score
}

// ScoreRecord scores a record's keyword text against query.
func (s *Scorer) ScoreRecord(record *core.Record, query string) float64 {
	return s.Score(RecordText(record), query)
}

// ScoreAll scores every record and returns them highest first.
// Records with equal scores keep their input order.
func (s *Scorer) ScoreAll(records []*core.Record, query string) []core.ScoredRecord {
	scored := make([]core.ScoredRecord, len(records))
	for i, r := range records {
		scored[i] = core.ScoredRecord{Record: r, Score: float32(s.ScoreRecord(r, query))}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ScoreKeywordResults builds a Scorer over records and ranks them for query.
func ScoreKeywordResults(records []*core.Record, query string) []core.ScoredRecord {
	if len(records) == 0 {
		return []core.ScoredRecord{}
	}
	return NewFromRecords(records).ScoreAll(records, query)
}

// RecordText is the keyword document for a record: the repository name
// (last path segment, doubled), description, language and topics.
func RecordText(record *core.Record) string {
	if record == nil {
		return ""
	}
	name := record.FullName
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	parts := make([]string, 0, 4+len(record.Topics))
	parts = append(parts, name, name)
	if record.Description != "" {
		parts = append(parts, record.Description)
	}
	if record.Language != "" {
		parts = append(parts, record.Language)
	}
	parts = append(parts, record.Topics...)
	return strings.Join(parts, " ")
}

// Tokenize lowercases text and splits it into alphanumeric runs,
// dropping single-byte tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
