package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/ai/mock"
	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIndexer implements Indexer for testing
type testIndexer struct {
	mu      sync.Mutex
	batches [][]*core.RecordDoc
	failOn  string // fail chunks containing this full name
}

func (ti *testIndexer) IndexRecords(ctx context.Context, docs []*core.RecordDoc) (int, error) {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	for _, doc := range docs {
		if ti.failOn != "" && doc.Record.FullName == ti.failOn {
			return 0, fmt.Errorf("%w: %s", core.ErrEmbedding, doc.Record.FullName)
		}
	}
	ti.batches = append(ti.batches, docs)
	return len(docs), nil
}

func (ti *testIndexer) batchCount() int {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	return len(ti.batches)
}

func makeDocs(n int) []*core.RecordDoc {
	docs := make([]*core.RecordDoc, n)
	for i := range docs {
		docs[i] = &core.RecordDoc{Record: &core.Record{
			Platform:    core.PlatformGitHub,
			FullName:    fmt.Sprintf("user/repo%d", i),
			Description: fmt.Sprintf("Repository number %d", i),
		}}
	}
	return docs
}

func TestNewPipeline(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(&testIndexer{})
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, DefaultChunkSize, p.chunkSize)
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(&testIndexer{}, WithPoolSize(4), WithChunkSize(10), WithLogger(slog.Default()))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 4, p.pool.Cap())
		assert.Equal(t, 10, p.chunkSize)
	})

	t.Run("non-positive sizes clamp to one", func(t *testing.T) {
		p, err := NewPipeline(&testIndexer{}, WithPoolSize(0), WithChunkSize(-5), WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 1, p.pool.Cap())
		assert.Equal(t, 1, p.chunkSize)
	})

	t.Run("nil indexer", func(t *testing.T) {
		_, err := NewPipeline(nil)
		assert.Equal(t, ErrIndexerRequired, err)
	})
}

func TestPipeline_IngestChunks(t *testing.T) {
	testCases := []struct {
		name       string
		numDocs    int
		chunkSize  int
		wantChunks int
	}{
		{"empty", 0, 10, 0},
		{"single partial chunk", 3, 10, 1},
		{"exact chunks", 20, 10, 2},
		{"remainder chunk", 25, 10, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			indexer := &testIndexer{}
			p, err := NewPipeline(indexer, WithPoolSize(3), WithChunkSize(tc.chunkSize))
			require.NoError(t, err)
			defer p.Release()

			require.NoError(t, p.Ingest(context.Background(), makeDocs(tc.numDocs)))
			indexed, err := p.Wait()
			require.NoError(t, err)
			assert.Equal(t, tc.numDocs, indexed)
			assert.Equal(t, tc.wantChunks, indexer.batchCount())
		})
	}
}

func TestPipeline_WaitCollectsErrors(t *testing.T) {
	indexer := &testIndexer{failOn: "user/repo12"}
	p, err := NewPipeline(indexer, WithPoolSize(2), WithChunkSize(5))
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(context.Background(), makeDocs(20)))
	indexed, err := p.Wait()
	assert.ErrorIs(t, err, core.ErrEmbedding)
	assert.Equal(t, 15, indexed)

	// Counters reset after Wait
	indexed, err = p.Wait()
	assert.NoError(t, err)
	assert.Zero(t, indexed)
}

func TestPipeline_IngestCancelledContext(t *testing.T) {
	p, err := NewPipeline(&testIndexer{})
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Ingest(ctx, makeDocs(3))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPipeline_IngestAfterRelease(t *testing.T) {
	p, err := NewPipeline(&testIndexer{})
	require.NoError(t, err)
	p.Release()

	err = p.Ingest(context.Background(), makeDocs(1))
	assert.Error(t, err)
	indexed, err := p.Wait()
	assert.NoError(t, err)
	assert.Zero(t, indexed)
}

func TestPipeline_WithSearchEngine(t *testing.T) {
	cfg := search.NewConfig(search.WithCachePath(t.TempDir()))
	provider, err := ai.NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendMock), ai.WithDimension(16)), ai.WithLoader(mock.Load))
	require.NoError(t, err)
	engine, err := search.NewEngine(provider, cfg)
	require.NoError(t, err)

	p, err := NewPipeline(engine, WithPoolSize(4), WithChunkSize(7))
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Ingest(context.Background(), makeDocs(50)))
	indexed, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 50, indexed)
	assert.Equal(t, 50, engine.IndexedCount())
}
