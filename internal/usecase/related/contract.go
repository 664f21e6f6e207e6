package related

import (
	"context"

	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
	"github.com/kindred-cloud/kindred/internal/domain/semantic"
)

// CorpusReader supplies the full post corpus for one ranking run.
type CorpusReader interface {
	ListAll(ctx context.Context) ([]dompost.Post, error)
}

// SemanticSearcher resolves scored matches for a free-text query.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, count int) ([]semantic.Match, error)
}
