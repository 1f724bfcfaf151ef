package mock

import (
	"context"
	"sync"

	"github.com/poiesic/reposcout/ai"
)

// MockEmbedder is a test double for ai.EmbeddingProvider.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// InitializeFunc is called by Initialize if set.
	InitializeFunc func(ctx context.Context) error

	// Dim is the reported dimension. Default: 384.
	Dim int

	mu          sync.Mutex
	callCount   int
	initialized bool
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dim: ai.DefaultDimension}
}

// WithEmbedTextsFunc sets the batch embedding behavior and returns m.
func (m *MockEmbedder) WithEmbedTextsFunc(fn func(ctx context.Context, texts []string) ([][]float32, error)) *MockEmbedder {
	m.EmbedTextsFunc = fn
	return m
}

// Initialize marks the embedder initialized.
func (m *MockEmbedder) Initialize(ctx context.Context) error {
	if m.InitializeFunc != nil {
		if err := m.InitializeFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

// IsInitialized reports whether Initialize succeeded.
func (m *MockEmbedder) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Dimension returns Dim.
func (m *MockEmbedder) Dimension() int {
	return m.Dim
}

// Model returns a fixed model name.
func (m *MockEmbedder) Model() string {
	return "mock-embedder"
}

// Close is a no-op.
func (m *MockEmbedder) Close() error {
	return nil
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.count()

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return generateDeterministicVector(text, m.Dim), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.count()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, m.Dim)
	}
	return embeddings, nil
}

// CallCount returns the number of times any embedding method was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
	m.InitializeFunc = nil
}

func (m *MockEmbedder) count() {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
}

var _ ai.EmbeddingProvider = (*MockEmbedder)(nil)
