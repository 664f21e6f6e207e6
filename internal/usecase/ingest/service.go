// Package ingest maintains the post corpus: writes posts with their
// embeddings and rebuilds the vector index.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
)

// Service handles corpus writes with automatic vectorization.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates an ingest service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Upsert embeds a post's title and description and writes both the
// post and its vector. Returns true if the post was created.
func (s *Service) Upsert(ctx context.Context, p *dompost.Post) (bool, error) {
	result, err := s.embed.Embed(ctx, embeddingText(p))
	if err != nil {
		return false, fmt.Errorf("vectorize post: %w", err)
	}

	created, err := s.repo.Upsert(ctx, p, result.Embedding)
	if err != nil {
		return false, fmt.Errorf("upsert post: %w", err)
	}
	return created, nil
}

// Get retrieves a post by slug.
func (s *Service) Get(ctx context.Context, slug string) (dompost.Post, error) {
	p, err := s.repo.Get(ctx, slug)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// List returns the whole corpus.
func (s *Service) List(ctx context.Context) ([]dompost.Post, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// EnsureIndex creates the vector index on startup if absent.
func (s *Service) EnsureIndex(ctx context.Context) error {
	return s.repo.EnsureIndex(ctx)
}

// Reindex drops and recreates the vector index, then re-embeds and
// rewrites every post. Posts that fail to embed are skipped and
// counted, not fatal.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list posts: %w", err)
	}

	if err := s.repo.RecreateIndex(ctx); err != nil {
		return 0, fmt.Errorf("recreate index: %w", err)
	}

	reindexed := 0
	for i := range posts {
		p := &posts[i]
		result, err := s.embed.Embed(ctx, embeddingText(p))
		if err != nil {
			s.logger.Warn("Skipping post during reindex",
				zap.String("slug", p.Slug()), zap.Error(err))
			continue
		}
		if _, err := s.repo.Upsert(ctx, p, result.Embedding); err != nil {
			s.logger.Warn("Failed to rewrite post during reindex",
				zap.String("slug", p.Slug()), zap.Error(err))
			continue
		}
		reindexed++
	}

	return reindexed, nil
}

// embeddingText is the canonical text a post is embedded from.
func embeddingText(p *dompost.Post) string {
	if p.Description() == "" {
		return p.Title()
	}
	return p.Title() + "\n\n" + p.Description()
}
