package posts

import (
	"strings"

	"github.com/kindred-cloud/kindred/internal/db"
	"github.com/kindred-cloud/kindred/internal/domain"
)

// IndexName is the FT index over the post corpus.
const IndexName = domain.KeyPrefix + "post:idx"

const keyPrefix = domain.KeyPrefix + "post:"

// HNSWConfig tunes the HNSW graph of the vector index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

func postKey(slug string) string {
	return keyPrefix + slug
}

func slugFromKey(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

func scanPattern() string {
	return keyPrefix + "*"
}

// buildIndex defines the FT schema over post hashes: tag fields for the
// membership signals, TEXT title for ad-hoc inspection, HNSW vector for
// semantic search.
func buildIndex(dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName).
		Prefix(keyPrefix).
		TagWithOpts(fieldTags, tagSeparator, true).
		Tag(fieldSeries).
		Numeric(fieldSeriesOrder).
		Text(fieldTitle).
		VectorHNSW(fieldVector, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
