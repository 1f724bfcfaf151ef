// Package mock provides test doubles for the ai package.
//
// Importing the package registers the "mock" backend, which loads a
// HashEncoder. The doubles let tests run without an embedding service and
// give controlled, deterministic vectors.
//
// # Usage in Tests
//
//	// A real lazily initialized provider over hash vectors
//	provider := mock.NewHashProvider(16)
//
//	// Vocabulary-aware vectors for ranking tests
//	loader := mock.KeywordLoader(map[string]int{"logging": 0, "library": 1})
//	provider, err := ai.NewProvider(cfg, ai.WithLoader(loader))
//
//	// Custom behavior injection
//	m := mock.NewMockEmbedder().
//	    WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
//	        return nil, errors.New("boom")
//	    })
//
//	// Check call counts
//	count := m.CallCount()
//
// # Default Behavior
//
//   - HashEncoder: unit vectors seeded from an FNV hash of the text
//   - KeywordEncoder: one axis per known word plus a constant bias axis
//   - MockEmbedder: HashEncoder vectors unless a func is injected
package mock
