package domain

import "errors"

var (
	// ErrTitleRequired signals a related-content request without a title.
	// It is the only ranking failure surfaced to callers; every other
	// failure degrades to a smaller result set.
	ErrTitleRequired = errors.New("title is required")
	// ErrPostNotFound signals a missing post.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidPost signals a post that fails validation.
	ErrInvalidPost = errors.New("invalid post")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
