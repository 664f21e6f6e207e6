package posts

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
)

// Hash field names under kindred:post:<slug>. The __vector field is the
// binary embedding the FT index searches over.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldDate        = "date"
	fieldURL         = "url"
	fieldImage       = "image"
	fieldTags        = "tags"
	fieldSeries      = "series"
	fieldSeriesOrder = "series_order"
	fieldVector      = "__vector"

	tagSeparator = ","
)

// buildHashFields converts a post plus its embedding into a flat
// map[string]string for HSET.
func buildHashFields(p *dompost.Post, vector []float32) map[string]string {
	m := map[string]string{
		fieldTitle:       p.Title(),
		fieldDescription: p.Description(),
		fieldDate:        p.Date(),
		fieldURL:         p.URL(),
		fieldImage:       p.Image(),
		fieldTags:        strings.Join(p.Tags(), tagSeparator),
		fieldSeries:      p.Series(),
		fieldSeriesOrder: strconv.Itoa(p.SeriesOrder()),
	}
	if len(vector) > 0 {
		m[fieldVector] = vectorToBytes(vector)
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Post.
func parseHashFields(slug string, m map[string]string) dompost.Post {
	var tags []string
	if raw := m[fieldTags]; raw != "" {
		tags = strings.Split(raw, tagSeparator)
	}

	order := 0
	if raw := m[fieldSeriesOrder]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			order = n
		}
	}

	return dompost.Reconstruct(
		slug,
		m[fieldTitle],
		m[fieldDescription],
		m[fieldDate],
		m[fieldURL],
		m[fieldImage],
		tags,
		m[fieldSeries],
		order,
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
