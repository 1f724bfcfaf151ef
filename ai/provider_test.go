package ai_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/reposcout/ai"
	"github.com/poiesic/reposcout/ai/mock"
	"github.com/poiesic/reposcout/core"
)

func mockConfig(dim int) *ai.Config {
	return ai.NewConfig(ai.WithBackend(ai.BackendMock), ai.WithDimension(dim), ai.WithBatchSize(2))
}

// fixedEncoder returns the same vector for every text.
type fixedEncoder struct {
	vec []float32
	err error
	n   int
}

func (f *fixedEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	count := len(texts) + f.n
	out := make([][]float32, count)
	for i := range out {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fixedEncoder) Close() error { return nil }

func loaderFor(enc ai.Encoder) ai.Loader {
	return func(context.Context, *ai.Config, int) (ai.Encoder, error) { return enc, nil }
}

func TestNewProvider(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := ai.NewProvider(nil)
		assert.ErrorIs(t, err, ai.ErrConfigRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := ai.NewProvider(ai.NewConfig(ai.WithBackend("nope")))
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("registered mock backend", func(t *testing.T) {
		assert.Contains(t, ai.Backends(), ai.BackendMock)

		p, err := ai.NewProvider(mockConfig(8))
		require.NoError(t, err)
		assert.False(t, p.IsInitialized())
		assert.Equal(t, 8, p.Dimension())
		assert.Equal(t, ai.DefaultModel, p.Model())
	})

	t.Run("dimension from model table", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithBackend(ai.BackendMock), ai.WithEmbeddingModel(ai.ModelBGEBase))
		p, err := ai.NewProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, 768, p.Dimension())
	})
}

func TestProvider_InitializeIdempotent(t *testing.T) {
	var loads atomic.Int32
	loader := func(ctx context.Context, cfg *ai.Config, dim int) (ai.Encoder, error) {
		loads.Add(1)
		return mock.NewHashEncoder(dim), nil
	}
	p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loader))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.Initialize(ctx))
	assert.True(t, p.IsInitialized())
	assert.Equal(t, int32(1), loads.Load())
}

func TestProvider_ConcurrentLazyInit(t *testing.T) {
	var loads atomic.Int32
	loader := func(ctx context.Context, cfg *ai.Config, dim int) (ai.Encoder, error) {
		loads.Add(1)
		return mock.NewHashEncoder(dim), nil
	}
	p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loader))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.EmbedText(context.Background(), "concurrent text")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), loads.Load(), "model must be loaded exactly once")
}

func TestProvider_LoadFailure(t *testing.T) {
	boom := errors.New("model file missing")
	calls := 0
	loader := func(context.Context, *ai.Config, int) (ai.Encoder, error) {
		calls++
		return nil, boom
	}
	p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loader))
	require.NoError(t, err)

	_, err = p.EmbedText(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrModelLoad)
	assert.ErrorIs(t, err, boom)
	assert.False(t, p.IsInitialized())
	assert.Equal(t, 1, calls, "a failed load is not retried within the call")

	err = p.Initialize(context.Background())
	assert.ErrorIs(t, err, core.ErrModelLoad)
	assert.Equal(t, 2, calls, "explicit Initialize retries")
}

func TestProvider_EmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves order across batches", func(t *testing.T) {
		p := mock.NewHashProvider(8)
		texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}

		batch, err := p.EmbedTexts(ctx, texts)
		require.NoError(t, err)
		require.Len(t, batch, len(texts))

		for i, text := range texts {
			single, err := p.EmbedText(ctx, text)
			require.NoError(t, err)
			assert.Equal(t, single, batch[i])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		p := mock.NewHashProvider(8)
		out, err := p.EmbedTexts(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.False(t, p.IsInitialized())
	})

	t.Run("wrong dimension fails loudly", func(t *testing.T) {
		p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loaderFor(&fixedEncoder{vec: []float32{1, 2, 3}})))
		require.NoError(t, err)

		_, err = p.EmbedText(ctx, "text")
		assert.ErrorIs(t, err, core.ErrEmbedding)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("count mismatch", func(t *testing.T) {
		enc := &fixedEncoder{vec: make([]float32, 8), n: 1}
		p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loaderFor(enc)))
		require.NoError(t, err)

		_, err = p.EmbedTexts(ctx, []string{"a"})
		assert.ErrorIs(t, err, core.ErrEmbedding)
	})

	t.Run("encoder failure", func(t *testing.T) {
		boom := errors.New("timeout")
		p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loaderFor(&fixedEncoder{err: boom})))
		require.NoError(t, err)

		_, err = p.EmbedText(ctx, "text")
		assert.ErrorIs(t, err, core.ErrEmbedding)
		assert.ErrorIs(t, err, boom)
	})
}

func TestProvider_Close(t *testing.T) {
	enc := mock.NewHashEncoder(8)
	p, err := ai.NewProvider(mockConfig(8), ai.WithLoader(loaderFor(enc)))
	require.NoError(t, err)

	require.NoError(t, p.Initialize(context.Background()))
	require.NoError(t, p.Close())
	assert.True(t, enc.Closed())
	assert.False(t, p.IsInitialized())
	assert.NoError(t, p.Close())
}
