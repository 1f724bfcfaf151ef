// Package ingestion provides pipeline orchestration for indexing repository records.
//
// The Pipeline type splits incoming records into chunks and indexes each chunk
// on a worker pool, so large imports embed several batches concurrently.
// Ingest returns as soon as the chunks are queued; Wait blocks until every
// queued chunk has been processed and reports the indexed count together with
// any errors.
package ingestion
