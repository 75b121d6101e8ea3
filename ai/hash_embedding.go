package ai

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// HashEmbeddingModel prefixes the model name recorded for hash vectors. The
// dimension is appended so vectors of different sizes never share a key.
const HashEmbeddingModel = "sha256-hash"

// hashEmbeddingService derives a vector from the SHA-256 digest of the
// lower-cased text. Identical texts map to identical vectors; nothing else
// about similarity is preserved. It needs no network and suits offline runs.
type hashEmbeddingService struct {
	dimensions int
}

// NewHashEmbeddingService creates the offline hash embedder.
func NewHashEmbeddingService(dimensions int) EmbeddingService {
	return &hashEmbeddingService{dimensions: dimensions}
}

func (s *hashEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(text)))
	vec := make([]float32, s.dimensions)
	for i := range vec {
		vec[i] = float32(sum[i%len(sum)]) / 255.0
	}
	return vec, nil
}

func (s *hashEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i], _ = s.Embed(ctx, text)
	}
	return vectors, nil
}

func (s *hashEmbeddingService) Dimensions() int {
	return s.dimensions
}

func (s *hashEmbeddingService) Model() string {
	return fmt.Sprintf("%s-%d", HashEmbeddingModel, s.dimensions)
}
