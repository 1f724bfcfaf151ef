// Package reindex rebuilds the semantic index from the record store, in
// batches, with progress reporting.
package reindex
