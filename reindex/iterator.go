package reindex

import (
	"context"

	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/storage"
)

const (
	// DefaultBatchSize is the default number of records handed to each batch callback
	DefaultBatchSize = 100
)

// RecordIterator walks every stored record in batches.
type RecordIterator struct {
	repo      storage.RecordRepository
	batchSize int
}

// NewRecordIterator creates an iterator over repo. A non-positive batchSize
// selects DefaultBatchSize.
func NewRecordIterator(repo storage.RecordRepository, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches in identity key order. The last
// batch may be short. Iteration stops at the first error from fn or ctx.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.RecordDoc) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]*core.RecordDoc, 0, it.batchSize)
	err := it.repo.ForEach(ctx, func(doc *core.RecordDoc) error {
		batch = append(batch, doc)
		if len(batch) < it.batchSize {
			return nil
		}
		full := batch
		batch = make([]*core.RecordDoc, 0, it.batchSize)
		if err := fn(full); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
