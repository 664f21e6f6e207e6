package ingest

import (
	"context"

	"github.com/kindred-cloud/kindred/internal/domain"
	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
)

// Repository defines the storage contract for the post corpus.
type Repository interface {
	Upsert(ctx context.Context, p *dompost.Post, vector []float32) (created bool, err error)
	Get(ctx context.Context, slug string) (dompost.Post, error)
	ListAll(ctx context.Context) ([]dompost.Post, error)
	Delete(ctx context.Context, slug string) error
	EnsureIndex(ctx context.Context) error
	RecreateIndex(ctx context.Context) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
