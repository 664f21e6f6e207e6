// Package post holds the content item published into the corpus.
package post

import (
	"fmt"
	"strings"

	"github.com/kindred-cloud/kindred/internal/domain"
)

// Post is one published content item. Ranking never mutates posts; the
// corpus owns them and the engine only reads.
type Post struct {
	slug        string
	title       string
	description string
	date        string
	url         string
	image       string
	tags        []string
	series      string
	seriesOrder int
}

// New validates and creates a post. Slug and title are required; slug
// must be URL-safe (no spaces or slashes).
func New(
	slug, title, description, date, url, image string,
	tags []string, series string, seriesOrder int,
) (Post, error) {
	if slug == "" {
		return Post{}, fmt.Errorf("%w: slug is required", domain.ErrInvalidPost)
	}
	if strings.ContainsAny(slug, " /") {
		return Post{}, fmt.Errorf("%w: slug %q must be URL-safe", domain.ErrInvalidPost, slug)
	}
	if title == "" {
		return Post{}, fmt.Errorf("%w: title is required", domain.ErrInvalidPost)
	}
	if seriesOrder != 0 && series == "" {
		return Post{}, fmt.Errorf("%w: series_order without series", domain.ErrInvalidPost)
	}
	return Reconstruct(slug, title, description, date, url, image, tags, series, seriesOrder), nil
}

// Reconstruct rebuilds a post from storage without validation.
func Reconstruct(
	slug, title, description, date, url, image string,
	tags []string, series string, seriesOrder int,
) Post {
	copied := make([]string, len(tags))
	copy(copied, tags)
	return Post{
		slug:        slug,
		title:       title,
		description: description,
		date:        date,
		url:         url,
		image:       image,
		tags:        copied,
		series:      series,
		seriesOrder: seriesOrder,
	}
}

// Slug returns the unique stable identifier.
func (p *Post) Slug() string { return p.slug }

// Title returns the display title.
func (p *Post) Title() string { return p.title }

// Description returns the display description.
func (p *Post) Description() string { return p.description }

// Date returns the ISO publish date.
func (p *Post) Date() string { return p.date }

// URL returns the canonical URL.
func (p *Post) URL() string { return p.url }

// Image returns the cover image reference, possibly empty.
func (p *Post) Image() string { return p.image }

// Tags returns the post's tags. The slice is shared; callers must not modify it.
func (p *Post) Tags() []string { return p.tags }

// Series returns the series name, empty when the post belongs to none.
func (p *Post) Series() string { return p.series }

// SeriesOrder returns the position within the series, meaningful only when Series is set.
func (p *Post) SeriesOrder() int { return p.seriesOrder }

// InSeries reports whether the post belongs to the named series.
// An empty series name never matches.
func (p *Post) InSeries(series string) bool {
	return series != "" && p.series == series
}
