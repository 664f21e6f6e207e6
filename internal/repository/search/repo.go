// Package search runs KNN queries over the post vector index and maps
// hits to domain semantic matches.
package search

import (
	"context"
	"fmt"

	"github.com/kindred-cloud/kindred/internal/db"
	"github.com/kindred-cloud/kindred/internal/domain/semantic"
	"github.com/kindred-cloud/kindred/internal/repository/posts"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// returnFields is the display metadata fetched with each KNN hit.
var returnFields = []string{"title", "url", "description", "date", "image"}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN returns the k nearest posts to the query vector, ordered by
// descending similarity.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]semantic.Match, error) {
	q := &db.KNNQuery{
		IndexName:    posts.IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseKNNResults(sr), nil
}

func parseKNNResults(sr *db.SearchResult) []semantic.Match {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	matches := make([]semantic.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		matches = append(matches, semantic.NewMatch(entry.Score, semantic.Metadata{
			Title:       entry.Fields["title"],
			URL:         entry.Fields["url"],
			Description: entry.Fields["description"],
			Date:        entry.Fields["date"],
			Image:       entry.Fields["image"],
		}))
	}
	return matches
}
