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


package reindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/storage"
)

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of records embedded per batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// Reset clears the index before indexing. Without it, stored records are
	// upserted into the existing index.
	Reset bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		Reset:          true,
	}
}

// Target is the index being rebuilt. *search.Engine satisfies it.
type Target interface {
	ClearIndex()
	IndexRecords(ctx context.Context, docs []*core.RecordDoc) (int, error)
	Save() error
}

// Result summarizes a reindex run.
type Result struct {
	Total   int
	Indexed int
	Elapsed time.Duration
}

// Reindexer rebuilds a Target from every record in a store.
type Reindexer struct {
	store    storage.RecordRepository
	target   Target
	config   *Config
	progress io.Writer
	iterator *RecordIterator
	logger   *slog.Logger
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr); nil discards it.
func NewReindexer(store storage.RecordRepository, target Target, config *Config, progress io.Writer) (*Reindexer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if target == nil {
		return nil, ErrTargetRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		store:    store,
		target:   target,
		config:   config,
		progress: progress,
		iterator: NewRecordIterator(store, config.BatchSize),
		logger:   slog.Default().With("component", "reindexer"),
	}, nil
}

// Run indexes every stored record and saves the index.
// An indexing error aborts the run without saving.
func (r *Reindexer) Run(ctx context.Context) (Result, error) {
	total, err := r.store.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count records: %w", err)
	}

	if r.config.Reset {
		r.target.ClearIndex()
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in store (0 records)\n")
		if r.config.Reset {
			if err := r.target.Save(); err != nil {
				return Result{}, err
			}
		}
		return Result{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d records (batch size: %d)\n",
		total, r.iterator.batchSize)
	r.logger.Info("reindexing from store", "records", total, "reset", r.config.Reset)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	indexed := 0
	err = r.iterator.ForEach(ctx, func(docs []*core.RecordDoc) error {
		n, err := r.target.IndexRecords(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to index batch: %w", err)
		}
		indexed += n
		tracker.Add(len(docs))
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if err := r.target.Save(); err != nil {
		return Result{}, fmt.Errorf("failed to save index: %w", err)
	}

	tracker.Finish()
	elapsed := tracker.Snapshot().Elapsed

	fmt.Fprintf(r.progress, "Reindex complete. Indexed %d of %d records in %v\n",
		indexed, total, elapsed.Round(time.Millisecond))
	return Result{Total: total, Indexed: indexed, Elapsed: elapsed}, nil
}
