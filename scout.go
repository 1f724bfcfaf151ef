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


// Package reposcout indexes repository metadata for semantic and hybrid search.
package reposcout

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/reposcout/ai"
	_ "github.com/poiesic/reposcout/ai/openai"
	"github.com/poiesic/reposcout/bm25"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/ingestion"
	"github.com/poiesic/reposcout/reindex"
	"github.com/poiesic/reposcout/search"
	"github.com/poiesic/reposcout/storage"
	"github.com/poiesic/reposcout/storage/badger"
)

// Scout wires the record store, embedding provider and search engine together.
type Scout struct {
	config   *Config
	backend  *badger.Backend
	store    storage.RecordRepository
	provider *ai.Provider
	engine   *search.Engine
	progress io.Writer
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*scoutOptions)

type scoutOptions struct {
	logger   *slog.Logger
	loader   ai.Loader
	inMemory bool
	progress io.Writer
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *scoutOptions) {
		o.logger = logger
	}
}

// WithLoader overrides the encoder backend registry.
func WithLoader(loader ai.Loader) Option {
	return func(o *scoutOptions) {
		o.loader = loader
	}
}

// WithInMemoryStore keeps records in memory instead of under the cache path.
func WithInMemoryStore() Option {
	return func(o *scoutOptions) {
		o.inMemory = true
	}
}

// WithProgress sets where reindex progress is written.
func WithProgress(w io.Writer) Option {
	return func(o *scoutOptions) {
		o.progress = w
	}
}

// Open opens the record store and the persisted index, warms the record
// cache and, when AutoBuild is set and the index is empty, rebuilds the
// index from the stored records.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Scout, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	options := &scoutOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.Search.RecordsPath(), options.inMemory,
		badger.WithBlockCacheMB(cfg.Search.MaxCacheSizeMB))
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	store, err := badger.NewRecordRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	providerOpts := []ai.ProviderOption{ai.WithProviderLogger(options.logger)}
	if options.loader != nil {
		providerOpts = append(providerOpts, ai.WithLoader(options.loader))
	}
	provider, err := ai.NewProvider(cfg.AI, providerOpts...)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	engine, err := search.NewEngine(provider, cfg.Search,
		search.WithRecordStore(store),
		search.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	s := &Scout{
		config:   cfg,
		backend:  backend,
		store:    store,
		provider: provider,
		engine:   engine,
		progress: options.progress,
		logger:   options.logger,
	}

	if _, err := engine.Warm(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.autoBuild(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Scout) autoBuild(ctx context.Context) error {
	if !s.config.Search.AutoBuild || !s.config.Search.Enabled || s.engine.IndexedCount() > 0 {
		return nil
	}
	n, err := s.store.Count(ctx)
	if err != nil || n == 0 {
		return err
	}
	s.logger.Info("index is empty, rebuilding from stored records", "records", n)
	_, err = s.Reindex(ctx, reindex.DefaultConfig())
	return err
}

// Close releases the provider, the store and the backend.
func (s *Scout) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing record repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the normalized configuration the scout was opened with.
func (s *Scout) Config() *Config {
	return s.config
}

// Engine returns the semantic search engine backing the scout.
func (s *Scout) Engine() *search.Engine {
	return s.engine
}

// Store returns the record store. Callers must not close it.
func (s *Scout) Store() storage.RecordRepository {
	return s.store
}

// NewIngestionPipeline creates a pipeline that indexes records into the
// scout's engine, logging through the scout's logger unless opts override it.
// The caller must Release it.
func (s *Scout) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(s.logger)}, opts...)
	return ingestion.NewPipeline(s.engine, opts...)
}

// NewReindexer creates a reindexer that rebuilds the engine's index from the
// store, reporting progress to the writer set with WithProgress.
func (s *Scout) NewReindexer(config *reindex.Config) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(s.store, s.engine, config, s.progress)
}

// Reindex rebuilds the vector index from every stored record.
func (s *Scout) Reindex(ctx context.Context, config *reindex.Config) (reindex.Result, error) {
	r, err := s.NewReindexer(config)
	if err != nil {
		return reindex.Result{}, err
	}
	return r.Run(ctx)
}

// KeywordSearch ranks every stored record against query with BM25.
// Records that share no term with the query are dropped.
func (s *Scout) KeywordSearch(ctx context.Context, query string, limit int) ([]core.ScoredRecord, error) {
	var records []*core.Record
	err := s.store.ForEach(ctx, func(doc *core.RecordDoc) error {
		records = append(records, doc.Record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	scored := bm25.ScoreKeywordResults(records, query)
	out := scored[:0]
	for _, sr := range scored {
		if sr.Score > 0 {
			out = append(out, sr)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Search runs a semantic search.
func (s *Scout) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.engine.Search(ctx, query, limit)
}

// HybridSearch ranks the stored records with BM25 and fuses the result with
// a semantic search over the same query.
func (s *Scout) HybridSearch(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		limit = s.config.Search.MaxResults
	}
	keyword, err := s.KeywordSearch(ctx, query, 2*limit)
	if err != nil {
		return nil, err
	}
	return s.engine.HybridSearch(ctx, query, keyword, limit)
}
