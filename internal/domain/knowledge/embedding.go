package knowledge

import (
	"fmt"
	"math"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the fixed width of InfoList.VectorMemory.
const EmbeddingDim = 1536

func ValidateEmbedding(vec []float32) error {
	if len(vec) != EmbeddingDim {
		return fmt.Errorf("embedding has %d dimensions, want %d", len(vec), EmbeddingDim)
	}
	for i, f := range vec {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("embedding component %d is not finite", i)
		}
	}
	return nil
}

// NewEmbedding validates vec and wraps it for storage. An empty vec means "not embedded yet".
func NewEmbedding(vec []float32) (*pgvector.Vector, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	if err := ValidateEmbedding(vec); err != nil {
		return nil, err
	}
	v := pgvector.NewVector(vec)
	return &v, nil
}
