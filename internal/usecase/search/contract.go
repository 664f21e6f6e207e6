package search

import (
	"context"

	"github.com/kindred-cloud/kindred/internal/domain"
	"github.com/kindred-cloud/kindred/internal/domain/semantic"
)

// Repository defines the storage contract for KNN search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]semantic.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
