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


package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/index"
	"github.com/poiesic/reposcout/preprocess"
	"github.com/poiesic/reposcout/storage"
)

// Engine combines semantic vector search with externally supplied keyword
// scores over an in-memory cache of indexed records.
//
// The vector index and the record cache each have their own lock and no
// method holds both at once.
type Engine struct {
	provider     ai.EmbeddingProvider
	config       Config
	preprocessor *preprocess.Preprocessor
	store        storage.RecordRepository
	monitor      SearchMonitor
	queryCache   *lru.Cache[string, []float32]
	indexOpts    []index.Option
	logger       *slog.Logger

	indexMu sync.RWMutex
	index   *index.VectorIndex

	cacheMu sync.RWMutex
	records map[string]*core.Record
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "search-engine")
		return nil
	}
}

// WithRecordStore persists indexed records so Warm can restore the record
// cache after a restart.
func WithRecordStore(store storage.RecordRepository) Option {
	return func(e *Engine) error {
		e.store = store
		return nil
	}
}

// WithMonitor sets the monitor used when a search is run without one.
func WithMonitor(monitor SearchMonitor) Option {
	return func(e *Engine) error {
		if monitor != nil {
			e.monitor = monitor
		}
		return nil
	}
}

// WithIndexOptions passes options through to the vector index.
func WithIndexOptions(opts ...index.Option) Option {
	return func(e *Engine) error {
		e.indexOpts = append(e.indexOpts, opts...)
		return nil
	}
}

// NewEngine creates an engine. The index saved under cfg.IndexPath() is
// loaded when present; otherwise a new empty index is created.
func NewEngine(provider ai.EmbeddingProvider, cfg *Config, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		provider:     provider,
		config:       *cfg,
		preprocessor: preprocess.New(preprocess.WithMaxTokens(cfg.MaxTokens)),
		monitor:      &noopMonitor{},
		logger:       slog.Default().With("component", "search-engine"),
		records:      make(map[string]*core.Record),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if cfg.QueryCacheSize > 0 {
		cache, err := lru.New[string, []float32](cfg.QueryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: query cache: %w", core.ErrConfig, err)
		}
		e.queryCache = cache
	}

	indexOpts := append([]index.Option{index.WithLogger(e.logger)}, e.indexOpts...)
	idx, err := index.Load(cfg.IndexPath(), provider.Dimension(), provider.Model(), indexOpts...)
	if err != nil {
		e.logger.Warn("could not load existing index, creating new one", "dir", cfg.IndexPath(), "err", err)
		idx, err = index.New(provider.Dimension(), provider.Model(), cfg.IndexPath(), indexOpts...)
		if err != nil {
			return nil, err
		}
	}
	e.index = idx

	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Initialize loads the embedding model.
func (e *Engine) Initialize(ctx context.Context) error {
	return e.provider.Initialize(ctx)
}

// IndexRecord indexes a single record with an optional README.
// A record with no indexable text is skipped without error.
func (e *Engine) IndexRecord(ctx context.Context, record *core.Record, readme string) error {
	_, err := e.IndexRecords(ctx, []*core.RecordDoc{{Record: record, Readme: readme}})
	return err
}

// IndexRecords embeds docs in one batch and adds them to the index and the
// record cache. Docs without a record or with empty canonical text are
// skipped. Returns the number of records indexed.
//
// An embedding or index error aborts the call. Index additions are not atomic:
// entries added before the failure stay indexed and cached.
func (e *Engine) IndexRecords(ctx context.Context, docs []*core.RecordDoc) (int, error) {
	if !e.config.Enabled {
		return 0, ErrDisabled
	}

	kept := make([]*core.RecordDoc, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for i, doc := range docs {
		if doc == nil || doc.Record == nil {
			e.logger.Debug("skipping empty document", "position", i)
			continue
		}
		if err := core.ValidateRecord(doc.Record); err != nil {
			return 0, err
		}
		text, err := e.preprocessor.Record(doc.Record, doc.Readme)
		if errors.Is(err, core.ErrPreprocessing) {
			e.logger.Debug("skipping record with empty text", "id", doc.Record.ID())
			continue
		}
		if err != nil {
			return 0, err
		}
		kept = append(kept, doc)
		texts = append(texts, text)
	}
	if len(kept) == 0 {
		return 0, nil
	}

	e.logger.Debug("generating embeddings", "count", len(texts))
	vectors, err := e.provider.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries := make([]*core.IndexEntry, len(kept))
	for i, doc := range kept {
		entries[i] = core.NewIndexEntry(doc.Record.ID(), vectors[i], texts[i])
	}

	added, addErr := e.addEntries(entries)

	e.cacheMu.Lock()
	for _, doc := range kept[:added] {
		e.records[doc.Record.ID()] = doc.Record
	}
	e.cacheMu.Unlock()

	if e.store != nil && added > 0 {
		if err := e.store.PutRecords(ctx, kept[:added]...); err != nil {
			return 0, fmt.Errorf("persist records: %w", err)
		}
	}

	if addErr != nil {
		return 0, addErr
	}
	e.logger.Debug("indexed records", "count", added, "skipped", len(docs)-added)
	return added, nil
}

// addEntries adds entries one at a time under the index lock and reports how
// many were applied before the first failure.
func (e *Engine) addEntries(entries []*core.IndexEntry) (int, error) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()

	for i, entry := range entries {
		if err := e.index.Add(entry); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// Search returns cached records semantically similar to query, best first.
// limit <= 0 selects MaxResults; the result never exceeds MaxResults.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return e.SearchWithMonitor(ctx, query, limit, nil)
}

// SearchWithMonitor is Search with a monitor receiving each search stage.
// A nil monitor selects the engine's monitor.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if !e.config.Enabled {
		return nil, ErrDisabled
	}
	if monitor == nil {
		monitor = e.monitor
	}
	if limit <= 0 {
		limit = e.config.MaxResults
	}

	monitor.Start(query)
	results, err := e.semanticSearch(ctx, query, limit, monitor)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}

// semanticSearch embeds query, searches the index for limit neighbors, applies
// the similarity threshold and resolves ids through the record cache.
func (e *Engine) semanticSearch(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	vector, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	e.indexMu.RLock()
	matches, err := e.index.Search(vector, limit)
	e.indexMu.RUnlock()
	if err != nil {
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	kept := make([]index.Match, 0, len(matches))
	for _, m := range matches {
		if m.Similarity >= e.config.MinSimilarity {
			kept = append(kept, m)
		}
	}
	monitor.AfterThreshold(kept)

	results := make([]*core.SearchResult, 0, len(kept))
	var missing []string
	e.cacheMu.RLock()
	for _, m := range kept {
		record, ok := e.records[m.ID]
		if !ok {
			missing = append(missing, m.ID)
			continue
		}
		results = append(results, core.SemanticOnly(record, m.Similarity))
	}
	e.cacheMu.RUnlock()

	for _, id := range missing {
		e.logger.Warn("indexed record missing from cache", "id", id)
		monitor.CacheMiss(id)
	}

	sortResults(results)
	return truncate(results, min(e.config.MaxResults, limit)), nil
}

// embedQuery preprocesses and embeds query, memoizing the vector.
func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	text, err := e.preprocessor.Query(query)
	if err != nil {
		return nil, err
	}
	if e.queryCache != nil {
		if vector, ok := e.queryCache.Get(text); ok {
			return vector, nil
		}
	}
	vector, err := e.provider.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if e.queryCache != nil {
		e.queryCache.Add(text, vector)
	}
	return vector, nil
}

// HybridSearch merges semantic results for query with keyword results scored
// elsewhere. Keyword records that are not indexed yet are indexed first.
// Keyword scores are normalized by the batch maximum and combined as
// semantic*w + keyword*(1-w), with a missing side counting as 0.
func (e *Engine) HybridSearch(ctx context.Context, query string, keyword []core.ScoredRecord, limit int) ([]*core.SearchResult, error) {
	return e.HybridSearchWithMonitor(ctx, query, keyword, limit, nil)
}

// HybridSearchWithMonitor is HybridSearch with a monitor receiving each stage.
func (e *Engine) HybridSearchWithMonitor(ctx context.Context, query string, keyword []core.ScoredRecord, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if !e.config.Enabled {
		return nil, ErrDisabled
	}
	if monitor == nil {
		monitor = e.monitor
	}
	if limit <= 0 {
		limit = e.config.MaxResults
	}

	monitor.Start(query)

	if pending := e.staleKeywordDocs(ctx, keyword); len(pending) > 0 {
		if _, err := e.IndexRecords(ctx, pending); err != nil {
			return nil, err
		}
	}

	semantic, err := e.semanticSearch(ctx, query, 2*limit, monitor)
	if err != nil {
		return nil, err
	}

	normalized := normalizeKeywordScores(keyword)
	monitor.AfterKeywordNormalization(normalized)

	type candidate struct {
		record   *core.Record
		semantic float32
		keyword  float32
		hasKW    bool
	}
	candidates := make(map[string]*candidate, len(semantic)+len(normalized))
	for _, r := range semantic {
		candidates[r.Record.ID()] = &candidate{record: r.Record, semantic: r.SemanticScore}
	}
	for _, kr := range keyword {
		if kr.Record == nil {
			continue
		}
		id := kr.Record.ID()
		c, ok := candidates[id]
		if !ok {
			c = &candidate{record: kr.Record}
			candidates[id] = c
		}
		c.keyword = normalized[id]
		c.hasKW = true
	}

	results := make([]*core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		r := core.Hybrid(c.record, c.semantic, c.keyword, e.config.SemanticWeight)
		if !c.hasKW {
			r.KeywordScore = nil
		}
		results = append(results, r)
	}

	sortResults(results)
	results = truncate(results, limit)
	monitor.Finish(results)
	return results, nil
}

// staleKeywordDocs returns the keyword records that must be (re)indexed: those
// not indexed yet, not cached, whose cached snapshot differs, or whose
// canonical text no longer matches the indexed text. A stored README is kept
// so refreshing a record does not drop it from the embedded text.
func (e *Engine) staleKeywordDocs(ctx context.Context, keyword []core.ScoredRecord) []*core.RecordDoc {
	seen := make(map[string]struct{}, len(keyword))
	var pending []*core.RecordDoc
	for _, kr := range keyword {
		if kr.Record == nil || core.ValidateRecord(kr.Record) != nil {
			continue
		}
		id := kr.Record.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		doc := &core.RecordDoc{Record: kr.Record}
		e.indexMu.RLock()
		meta, indexed := e.index.Metadata(id)
		e.indexMu.RUnlock()
		if !indexed {
			pending = append(pending, doc)
			continue
		}

		if e.store != nil {
			if stored, err := e.store.GetRecord(ctx, id); err == nil {
				doc.Readme = stored.Readme
			}
		}
		cached, ok := e.Record(id)
		text, err := e.preprocessor.Record(doc.Record, doc.Readme)
		if !ok || !cached.Equal(kr.Record) || err != nil || meta.TextChanged(text) {
			pending = append(pending, doc)
		}
	}
	return pending
}

// normalizeKeywordScores divides each score by the batch maximum. Scores pass
// through unchanged when the maximum is not positive. Duplicate ids keep their
// highest score.
func normalizeKeywordScores(keyword []core.ScoredRecord) map[string]float32 {
	var maxScore float32
	for _, kr := range keyword {
		maxScore = max(maxScore, kr.Score)
	}

	scores := make(map[string]float32, len(keyword))
	for _, kr := range keyword {
		if kr.Record == nil {
			continue
		}
		score := kr.Score
		if maxScore > 0 {
			score /= maxScore
		}
		id := kr.Record.ID()
		if prev, ok := scores[id]; !ok || score > prev {
			scores[id] = score
		}
	}
	return scores
}

// sortResults orders by hybrid score descending, then id ascending.
func sortResults(results []*core.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].HybridScore != results[j].HybridScore {
			return results[i].HybridScore > results[j].HybridScore
		}
		return results[i].Record.ID() < results[j].Record.ID()
	})
}

func truncate(results []*core.SearchResult, n int) []*core.SearchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

// IsIndexed reports whether id has an index entry.
func (e *Engine) IsIndexed(id string) bool {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.index.Contains(id)
}

// Record returns the cached record for id.
func (e *Engine) Record(id string) (*core.Record, bool) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	record, ok := e.records[id]
	return record, ok
}

// RemoveRecord removes id from the index, the record cache and the store.
// Returns core.ErrNotFound if id is not indexed.
func (e *Engine) RemoveRecord(ctx context.Context, id string) error {
	e.indexMu.Lock()
	err := e.index.Remove(id)
	e.indexMu.Unlock()
	if err != nil {
		return err
	}

	e.cacheMu.Lock()
	delete(e.records, id)
	e.cacheMu.Unlock()

	if e.store != nil {
		if err := e.store.DeleteRecords(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete stored record: %w", err)
		}
	}
	return nil
}

// Stats returns the index statistics.
func (e *Engine) Stats() core.IndexStats {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.index.Stats()
}

// IndexedCount returns the number of indexed records.
func (e *Engine) IndexedCount() int {
	e.indexMu.RLock()
	defer e.indexMu.RUnlock()
	return e.index.Len()
}

// Save writes the index to disk.
func (e *Engine) Save() error {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	return e.index.Save()
}

// ClearIndex empties the index and the record cache. The store is kept so
// the index can be rebuilt from it.
func (e *Engine) ClearIndex() {
	e.indexMu.Lock()
	e.index.Clear()
	e.indexMu.Unlock()

	e.cacheMu.Lock()
	e.records = make(map[string]*core.Record)
	e.cacheMu.Unlock()
}

// Clear empties the index, the record cache and the store.
func (e *Engine) Clear(ctx context.Context) error {
	e.ClearIndex()

	if e.store != nil {
		if err := e.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear record store: %w", err)
		}
	}
	e.logger.Info("cleared semantic index")
	return nil
}

// Rebuild replaces the index contents with docs and saves it.
func (e *Engine) Rebuild(ctx context.Context, docs []*core.RecordDoc) (int, error) {
	if err := e.Clear(ctx); err != nil {
		return 0, err
	}
	n, err := e.IndexRecords(ctx, docs)
	if err != nil {
		return 0, err
	}
	if err := e.Save(); err != nil {
		return 0, err
	}
	e.logger.Info("rebuilt semantic index", "records", n)
	return n, nil
}

// Warm fills the record cache from the store for every record present in the
// index. Stored records that are not indexed are left out. Returns the number
// of records cached.
func (e *Engine) Warm(ctx context.Context) (int, error) {
	if e.store == nil {
		return 0, nil
	}

	e.indexMu.RLock()
	ids := e.index.IDs()
	e.indexMu.RUnlock()
	indexed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		indexed[id] = struct{}{}
	}

	warmed := make(map[string]*core.Record, len(ids))
	err := e.store.ForEach(ctx, func(doc *core.RecordDoc) error {
		id := doc.Record.ID()
		if _, ok := indexed[id]; ok {
			warmed[id] = doc.Record
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("warm record cache: %w", err)
	}

	e.cacheMu.Lock()
	for id, record := range warmed {
		e.records[id] = record
	}
	e.cacheMu.Unlock()

	if missing := len(ids) - len(warmed); missing > 0 {
		e.logger.Warn("indexed records missing from store", "count", missing)
	}
	e.logger.Info("warmed record cache", "records", len(warmed))
	return len(warmed), nil
}
