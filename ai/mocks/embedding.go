package mocks

import (
	"context"
	"errors"
	"sync"
)

// MockEmbedding returns preset vectors keyed by text.
type MockEmbedding struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	err        error
	dimensions int
	model      string
	calls      int
}

// NewMockEmbedding creates a MockEmbedding producing dimensions-long vectors.
func NewMockEmbedding(dimensions int) *MockEmbedding {
	fallback := make([]float32, dimensions)
	if dimensions > 0 {
		fallback[0] = 1
	}
	return &MockEmbedding{
		vectors:    make(map[string][]float32),
		fallback:   fallback,
		dimensions: dimensions,
		model:      "mock-embedding",
	}
}

// WithVector presets the vector returned for text.
func (m *MockEmbedding) WithVector(text string, vec []float32) *MockEmbedding {
	m.vectors[text] = vec
	return m
}

// WithError makes every call fail with err.
func (m *MockEmbedding) WithError(err error) *MockEmbedding {
	m.err = err
	return m
}

// WithModel overrides the reported model name.
func (m *MockEmbedding) WithModel(model string) *MockEmbedding {
	m.model = model
	return m
}

func (m *MockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.fallback, nil
}

func (m *MockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbedding) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbedding) Model() string {
	return m.model
}

// CallCount returns how many texts were embedded.
func (m *MockEmbedding) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
