package reindex

import "errors"

var (
	// ErrStoreRequired is returned when a record store is not provided.
	ErrStoreRequired = errors.New("record store required")

	// ErrTargetRequired is returned when an index target is not provided.
	ErrTargetRequired = errors.New("index target required")
)
