package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/reposcout/core"
)

// DefaultChunkSize is the number of records indexed per task.
const DefaultChunkSize = 64

// Indexer indexes a batch of records and reports how many were indexed.
// *search.Engine satisfies it.
type Indexer interface {
	IndexRecords(ctx context.Context, docs []*core.RecordDoc) (int, error)
}

// Pipeline orchestrates concurrent indexing of repository records.
type Pipeline struct {
	pool      *ants.Pool
	proc      processor
	chunkSize int
	logger    *slog.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	indexed int
	errs    []error
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the number of records per indexing task.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline feeding indexer.
func NewPipeline(indexer Indexer, opts ...Option) (*Pipeline, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		pool:      pool,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets the final logger)
	proc, err := newIndexingProcessor(indexer, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.proc = proc

	return p, nil
}

// Ingest queues docs for indexing in chunks and returns once every chunk has
// been submitted. Processing runs detached from ctx cancellation; use Wait to
// collect the outcome.
func (p *Pipeline) Ingest(ctx context.Context, docs []*core.RecordDoc) error {
	if len(docs) == 0 {
		return nil
	}
	taskCtx := context.WithoutCancel(ctx)

	for start := 0; start < len(docs); start += p.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := docs[start:min(start+p.chunkSize, len(docs))]

		p.wg.Add(1)
		err := p.pool.Submit(func() {
			defer p.wg.Done()
			n, err := p.proc.process(taskCtx, chunk)
			p.record(n, err)
		})
		if err != nil {
			p.wg.Done()
			return err
		}
	}
	return nil
}

func (p *Pipeline) record(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexed += n
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

// Wait blocks until all queued chunks are processed. It returns the number
// of records indexed since the previous Wait and the joined chunk errors.
func (p *Pipeline) Wait() (int, error) {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	indexed, err := p.indexed, errors.Join(p.errs...)
	p.indexed, p.errs = 0, nil
	return indexed, err
}

// Running returns the number of busy workers.
func (p *Pipeline) Running() int {
	return p.pool.Running()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
