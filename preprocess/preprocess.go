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


package preprocess

import (
	"fmt"
	"strings"

	"github.com/poiesic/reposcout/core"
)

const (
	// DefaultMaxTokens approximates the encoder input limit, one word per token.
	DefaultMaxTokens = 512

	// DefaultExcerptWords caps the README excerpt.
	DefaultExcerptWords = 500
)

// Preprocessor builds canonical text with configurable limits.
// The zero value is not usable; use New.
type Preprocessor struct {
	maxTokens    int
	excerptWords int
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithMaxTokens sets the word budget for canonical text.
// Values less than 1 are ignored.
func WithMaxTokens(n int) Option {
	return func(p *Preprocessor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithExcerptWords sets the maximum README excerpt length in words.
// Values less than 1 are ignored.
func WithExcerptWords(n int) Option {
	return func(p *Preprocessor) {
		if n > 0 {
			p.excerptWords = n
		}
	}
}

// New creates a Preprocessor with the default limits, adjusted by opts.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		maxTokens:    DefaultMaxTokens,
		excerptWords: DefaultExcerptWords,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxTokens returns the configured word budget.
func (p *Preprocessor) MaxTokens() int {
	return p.maxTokens
}

// Record returns the canonical text for a record and its optional README.
//
// The identity key, language and topics are kept verbatim apart from
// lowercasing, so the canonical text always contains the identity key.
// Description and README are fully cleaned.
func (p *Preprocessor) Record(record *core.Record, readme string) (string, error) {
	if record == nil {
		return "", fmt.Errorf("%w: record is nil", core.ErrPreprocessing)
	}

	parts := make([]string, 0, 6)
	id := record.ID()
	parts = append(parts, id, id)

	if record.Language != "" {
		parts = append(parts, record.Language)
	}
	if record.Description != "" {
		parts = append(parts, Clean(record.Description))
	}
	if len(record.Topics) > 0 {
		parts = append(parts, strings.Join(record.Topics, " "))
	}
	if readme != "" {
		if excerpt := ReadmeExcerpt(readme, p.excerptWords); excerpt != "" {
			parts = append(parts, Clean(excerpt))
		}
	}

	text := Truncate(strings.ToLower(collapse(strings.Join(parts, " "))), p.maxTokens)
	if text == "" {
		return "", fmt.Errorf("%w: empty text for %s", core.ErrPreprocessing, id)
	}
	return text, nil
}

// Query returns the canonical text for a search query.
func (p *Preprocessor) Query(query string) (string, error) {
	text := Truncate(Clean(query), p.maxTokens)
	if text == "" {
		return "", fmt.Errorf("%w: query is empty after cleaning", core.ErrPreprocessing)
	}
	return text, nil
}

var defaultPreprocessor = New()

// Record builds canonical record text using the default limits.
func Record(record *core.Record, readme string) (string, error) {
	return defaultPreprocessor.Record(record, readme)
}

// Query builds canonical query text using the default limits.
func Query(query string) (string, error) {
	return defaultPreprocessor.Query(query)
}
