// Package posts persists the post corpus as Redis hashes under
// kindred:post:<slug>, with an FT vector index over the same hashes.
package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/kindred-cloud/kindred/internal/db"
	"github.com/kindred-cloud/kindred/internal/domain"
	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
)

// store is the consumer interface for the post corpus (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the corpus reader and writer interfaces of the usecases.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates a post repository. dim is the embedding dimension the
// vector index is created with.
func New(s store, dim int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dim: dim, hnsw: hnsw}
}

// Upsert creates or updates a post together with its embedding.
// Returns true if the post was created.
func (r *Repo) Upsert(ctx context.Context, p *dompost.Post, vector []float32) (bool, error) {
	key := postKey(p.Slug())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(p, vector)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a post by slug.
func (r *Repo) Get(ctx context.Context, slug string) (dompost.Post, error) {
	key := postKey(slug)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return dompost.Post{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	// HGETALL on a missing key returns an empty map, not an error.
	if len(m) == 0 {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return parseHashFields(slug, m), nil
}

// ListAll returns the entire corpus. Hashes are fetched in one
// pipelined round-trip after the key scan.
func (r *Repo) ListAll(ctx context.Context) ([]dompost.Post, error) {
	keys, err := r.store.Scan(ctx, scanPattern())
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w", err)
	}

	out := make([]dompost.Post, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue // deleted between scan and fetch
		}
		out = append(out, parseHashFields(slugFromKey(keys[i]), m))
	}
	return out, nil
}

// Delete removes a post.
func (r *Repo) Delete(ctx context.Context, slug string) error {
	key := postKey(slug)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrPostNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// EnsureIndex creates the vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.dim, r.hnsw)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// RecreateIndex drops and rebuilds the vector index. Existing hashes
// are re-indexed by the server in the background.
func (r *Repo) RecreateIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}

	def, err := buildIndex(r.dim, r.hnsw)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}
