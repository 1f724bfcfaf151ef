package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/storage"
)

// RecordRepository implements storage.RecordRepository for BadgerDB.
type RecordRepository struct {
	backend *Backend
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) (storage.RecordRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return &RecordRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *RecordRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *RecordRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutRecords inserts or replaces records.
func (r *RecordRepository) PutRecords(ctx context.Context, docs ...*core.RecordDoc) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	for i, doc := range docs {
		if doc == nil || doc.Record == nil {
			return fmt.Errorf("%w: document %d has no record", core.ErrInvalidRecord, i)
		}
	}
	if len(docs) == 0 {
		return nil
	}

	wb := r.backend.NewWriteBatch()
	defer wb.Cancel()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Set(makeRecordKey(doc.Record.ID()), storage.MarshalRecordDoc(doc)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// GetRecord retrieves a single record by identity key.
func (r *RecordRepository) GetRecord(ctx context.Context, id string) (*core.RecordDoc, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.RecordDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves the records that exist among ids.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...string) ([]*core.RecordDoc, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result []*core.RecordDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// DeleteRecords removes records by identity key.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ForEach calls fn for every record in identity key order.
func (r *RecordRepository) ForEach(ctx context.Context, fn func(doc *core.RecordDoc) error) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(recordPrefix)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc *core.RecordDoc
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalRecordDoc(val)
				return err
			}); err != nil {
				return fmt.Errorf("record %s: %w", recordIDFromKey(iter.Item().Key()), err)
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of stored records.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(recordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every record.
func (r *RecordRepository) Clear(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.DropPrefix([]byte(recordPrefix))
}

// readRecord reads a record from the transaction. A missing key yields nil, nil.
func readRecord(tx *badger.Txn, key []byte) (*core.RecordDoc, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.RecordDoc
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalRecordDoc(val)
		return unmarshalErr
	})
	return doc, err
}
