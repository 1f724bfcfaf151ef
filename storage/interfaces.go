package storage

import (
	"context"

	"github.com/poiesic/reposcout/core"
)

// Repository provides the operations shared by every storage backend.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// RecordRepository stores repository record snapshots keyed by identity key.
// It persists what the search engine has indexed so the record cache can
// be rebuilt after a restart.
type RecordRepository interface {
	Repository

	// PutRecords inserts or replaces records. Docs without a record are rejected
	// with core.ErrInvalidRecord and nothing is written.
	PutRecords(ctx context.Context, docs ...*core.RecordDoc) error

	// GetRecord retrieves a single record by identity key.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id string) (*core.RecordDoc, error)

	// GetRecords retrieves multiple records by identity key.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...string) ([]*core.RecordDoc, error)

	// DeleteRecords removes records by identity key.
	// Returns ErrNotFound if any record doesn't exist; nothing is deleted then.
	DeleteRecords(ctx context.Context, ids ...string) error

	// ForEach calls fn for every record in identity key order.
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, fn func(doc *core.RecordDoc) error) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}
