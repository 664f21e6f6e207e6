// Package semantic holds the contract with the vector search backend.
package semantic

import "strings"

// Metadata carries the display fields attached to a search hit. Every
// field is optional; the backend may return partial records and
// consumers fall back to placeholders.
type Metadata struct {
	URL         string
	Title       string
	Description string
	Date        string
	Image       string
}

// Match is a single scored hit from the semantic search backend.
type Match struct {
	similarity float64
	metadata   Metadata
}

// NewMatch creates a match. Similarity is clamped to [0,1].
func NewMatch(similarity float64, metadata Metadata) Match {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return Match{similarity: similarity, metadata: metadata}
}

// Similarity returns the normalized similarity score in [0,1].
func (m *Match) Similarity() float64 { return m.similarity }

// Metadata returns the hit's display metadata.
func (m *Match) Metadata() Metadata { return m.metadata }

// Slug resolves the match identity from the final path segment of its
// URL. Returns "" when the URL is absent, which makes the match
// unidentifiable (and therefore impossible to deduplicate).
func (m *Match) Slug() string {
	return SlugFromURL(m.metadata.URL)
}

// SlugFromURL extracts the final path segment of a URL, ignoring any
// query string, fragment, and trailing slash.
func SlugFromURL(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		url = url[i+1:]
	}
	// A bare scheme or host leaves no path segment to use as identity.
	if url == "" || strings.ContainsRune(url, ':') {
		return ""
	}
	return url
}
