package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/poiesic/reposcout/ai"
)

func init() {
	ai.RegisterBackend(ai.BackendMock, Load)
}

// Load is the ai.Loader for the "mock" backend: a HashEncoder of the
// requested dimension.
func Load(_ context.Context, _ *ai.Config, dimension int) (ai.Encoder, error) {
	return NewHashEncoder(dimension), nil
}

// HashEncoder is an ai.Encoder producing deterministic unit vectors from an
// FNV hash of the text. Identical texts map to identical vectors; distinct
// texts map to unrelated vectors. Safe for concurrent use.
type HashEncoder struct {
	dim    int
	calls  atomic.Int64
	closed atomic.Bool
}

// NewHashEncoder creates a HashEncoder producing dim-length vectors.
func NewHashEncoder(dim int) *HashEncoder {
	return &HashEncoder{dim: dim}
}

// Encode returns one deterministic vector per text.
func (h *HashEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	h.calls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = generateDeterministicVector(text, h.dim)
	}
	return out, nil
}

// Close marks the encoder closed.
func (h *HashEncoder) Close() error {
	h.closed.Store(true)
	return nil
}

// CallCount returns the number of Encode calls.
func (h *HashEncoder) CallCount() int {
	return int(h.calls.Load())
}

// Closed reports whether Close was called.
func (h *HashEncoder) Closed() bool {
	return h.closed.Load()
}

// KeywordEncoder is an ai.Encoder that places each known word on a fixed
// axis, so texts sharing vocabulary have high cosine similarity. The last
// axis carries a small constant bias so no vector is ever zero.
type KeywordEncoder struct {
	dim  int
	axes map[string]int

	mu    sync.Mutex
	calls int
}

// NewKeywordEncoder creates a KeywordEncoder. axes maps lowercase words to
// axis indexes in [0, dim-1).
func NewKeywordEncoder(dim int, axes map[string]int) *KeywordEncoder {
	return &KeywordEncoder{dim: dim, axes: axes}
}

// KeywordLoader returns an ai.Loader that creates a KeywordEncoder for the
// provider's dimension.
func KeywordLoader(axes map[string]int) ai.Loader {
	return func(_ context.Context, _ *ai.Config, dimension int) (ai.Encoder, error) {
		return NewKeywordEncoder(dimension, axes), nil
	}
}

// Encode returns one bag-of-keywords vector per text.
func (k *KeywordEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	k.mu.Lock()
	k.calls++
	k.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, k.dim)
		vec[k.dim-1] = 0.1
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if axis, ok := k.axes[w]; ok && axis < k.dim-1 {
				vec[axis]++
			}
		}
		out[i] = normalize(vec)
	}
	return out, nil
}

// Close is a no-op.
func (k *KeywordEncoder) Close() error {
	return nil
}

// CallCount returns the number of Encode calls.
func (k *KeywordEncoder) CallCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls
}

// NewHashProvider returns an ai.Provider backed by a HashEncoder of dim.
// It panics on configuration errors, which cannot happen for dim > 0.
func NewHashProvider(dim int) *ai.Provider {
	cfg := ai.NewConfig(ai.WithBackend(ai.BackendMock), ai.WithDimension(dim))
	p, err := ai.NewProvider(cfg, ai.WithLoader(Load))
	if err != nil {
		panic(err)
	}
	return p
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return normalize(vector)
}

func normalize(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return vector
	}
	inv := float32(1 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= inv
	}
	return vector
}
