package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/reposcout/core"
)

// indexingProcessor sends record chunks to an Indexer.
type indexingProcessor struct {
	indexer Indexer
	logger  *slog.Logger
}

var _ processor = (*indexingProcessor)(nil)

// newIndexingProcessor creates a new indexing processor.
func newIndexingProcessor(indexer Indexer, logger *slog.Logger) (processor, error) {
	if indexer == nil {
		return nil, fmt.Errorf("indexer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &indexingProcessor{
		indexer: indexer,
		logger:  logger.With("processor", "indexing"),
	}, nil
}

// process embeds and indexes one chunk of records.
func (ip *indexingProcessor) process(ctx context.Context, docs []*core.RecordDoc) (int, error) {
	ip.logger.Debug("processing records for indexing", "records", len(docs))

	n, err := ip.indexer.IndexRecords(ctx, docs)
	if err != nil {
		ip.logger.Error("error indexing records", "records", len(docs), "err", err)
		return 0, err
	}

	ip.logger.Debug("indexed records", "indexed", n, "skipped", len(docs)-n)
	return n, nil
}
