// Package related holds the request and result types of the ranking engine.
package related

import (
	"fmt"

	"github.com/kindred-cloud/kindred/internal/domain"
)

// Request parameter limits.
const (
	// MaxTitleLength is the maximum allowed query title length.
	MaxTitleLength = 512
	DefaultLimit   = 3
	MaxLimit       = 20
)

// Request is a validated related-content query.
type Request struct {
	title   string
	selfURL string
	limit   int
}

// NewRequest validates and normalizes related-content parameters.
// Title is required. A negative limit means "not set" and takes the
// default; limit 0 is a legitimate request for an empty result.
func NewRequest(title, selfURL string, limit int) (Request, error) {
	if title == "" {
		return Request{}, domain.ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return Request{}, fmt.Errorf("title too long (max %d chars)", MaxTitleLength)
	}
	if limit < 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{title: title, selfURL: selfURL, limit: limit}, nil
}

// Title returns the current item's title, used as the semantic query text.
func (r *Request) Title() string { return r.title }

// SelfURL returns the current item's canonical URL, used for self-exclusion.
func (r *Request) SelfURL() string { return r.selfURL }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
