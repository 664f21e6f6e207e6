// Package search embeds query text and resolves the nearest posts from
// the vector index.
package search

import (
	"context"
	"fmt"

	"github.com/kindred-cloud/kindred/internal/domain/semantic"
)

// Service turns free text into scored semantic matches.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search embeds the query and returns up to count matches ordered by
// descending similarity.
func (s *Service) Search(ctx context.Context, query string, count int) ([]semantic.Match, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if count <= 0 {
		return nil, nil
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	matches, err := s.repo.SearchKNN(ctx, embResult.Embedding, count)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return matches, nil
}
