// Package related ranks the corpus against one post by fusing series
// membership, tag overlap, and semantic similarity into a single score
// per candidate.
package related

import (
	"context"
	"sort"

	"go.uber.org/zap"

	dompost "github.com/kindred-cloud/kindred/internal/domain/post"
	domrel "github.com/kindred-cloud/kindred/internal/domain/related"
	"github.com/kindred-cloud/kindred/internal/domain/semantic"
)

// Signal weights. Series membership is authorial and absolute; tag
// overlap is structural; semantic similarity is continuous and noisy,
// so its ceiling sits below both (100 > 50 + 30, which keeps series
// members ahead of any tag+semantic combination).
const (
	seriesScore     = 100.0
	tagScoreCeiling = 50.0
	semanticCeiling = 30.0

	// semanticOverfetch pads the semantic query so exclusions and
	// overlap with the structural signals still leave enough hits.
	semanticOverfetch = 10

	// placeholderTitle fills in when search metadata omits a title.
	placeholderTitle = "Untitled"
)

// candidate accumulates signal contributions for one slug. score is
// internal and stripped before results leave the service.
type candidate struct {
	slug        string
	title       string
	url         string
	description string
	date        string
	image       string
	similarity  float64
	score       float64
}

// Service is the ranking engine. It is stateless; every invocation is
// a pure function of the request and the corpus, plus one semantic
// search call.
type Service struct {
	corpus CorpusReader
	search SemanticSearcher
	logger *zap.Logger
}

// New creates a related-content service.
func New(corpus CorpusReader, search SemanticSearcher, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, search: search, logger: logger}
}

// Rank returns up to limit posts related to the given one, ordered by
// descending fused score. Only a missing title is an error; every
// collaborator failure degrades to a smaller (possibly empty) result.
func (s *Service) Rank(ctx context.Context, title, selfURL string, limit int) ([]domrel.Item, error) {
	req, err := domrel.NewRequest(title, selfURL, limit)
	if err != nil {
		return nil, err
	}
	if req.Limit() == 0 {
		return []domrel.Item{}, nil
	}

	selfSlug := semantic.SlugFromURL(req.SelfURL())

	cands := make(map[string]*candidate)
	var order []string // insertion order, so ties stay reproducible

	add := func(c *candidate) {
		cands[c.slug] = c
		order = append(order, c.slug)
	}

	posts, err := s.corpus.ListAll(ctx)
	if err != nil {
		// Structural signals are lost but semantic search can still
		// produce a valid degraded result.
		s.logger.Warn("Corpus unavailable, ranking on semantic signal only", zap.Error(err))
		posts = nil
	}

	current, haveCurrent := findBySlug(posts, selfSlug)

	// Series affinity: every other member of the current post's series
	// is maximally relevant.
	if haveCurrent && current.Series() != "" {
		for i := range posts {
			p := &posts[i]
			if p.Slug() == selfSlug || !p.InSeries(current.Series()) {
				continue
			}
			add(&candidate{
				slug:        p.Slug(),
				title:       p.Title(),
				url:         p.URL(),
				description: p.Description(),
				date:        p.Date(),
				image:       p.Image(),
				similarity:  1.0,
				score:       seriesScore,
			})
		}
	}

	// Tag overlap: fraction of the current post's tags a candidate
	// covers. The divisor is the current post's tag count, so an item
	// covering all of them beats one covering the same tags diluted
	// among many of its own.
	if haveCurrent && len(current.Tags()) > 0 {
		currentTags := make(map[string]struct{}, len(current.Tags()))
		for _, t := range current.Tags() {
			currentTags[t] = struct{}{}
		}

		for i := range posts {
			p := &posts[i]
			if p.Slug() == selfSlug {
				continue
			}
			if _, seen := cands[p.Slug()]; seen {
				continue // series candidates keep their score
			}

			matching := 0
			for _, t := range p.Tags() {
				if _, ok := currentTags[t]; ok {
					matching++
				}
			}
			if matching == 0 {
				continue
			}

			score := float64(matching) / float64(len(current.Tags())) * tagScoreCeiling
			add(&candidate{
				slug:        p.Slug(),
				title:       p.Title(),
				url:         p.URL(),
				description: p.Description(),
				date:        p.Date(),
				image:       p.Image(),
				similarity:  score / tagScoreCeiling,
				score:       score,
			})
		}
	}

	// Semantic similarity: one query on the title, over-fetched. Boosts
	// existing candidates, creates new ones from search metadata.
	matches, err := s.search.Search(ctx, req.Title(), req.Limit()+semanticOverfetch)
	if err != nil {
		s.logger.Warn("Semantic search failed, returning structural signals only", zap.Error(err))
		matches = nil
	}

	for i := range matches {
		m := &matches[i]
		slug := m.Slug()
		if slug == "" || slug == selfSlug {
			continue
		}

		if existing, ok := cands[slug]; ok {
			// Boost only. The display similarity stays whatever the
			// stronger structural signal set.
			existing.score += m.Similarity() * semanticCeiling
			continue
		}

		md := m.Metadata()
		matchTitle := md.Title
		if matchTitle == "" {
			matchTitle = placeholderTitle
		}
		add(&candidate{
			slug:        slug,
			title:       matchTitle,
			url:         md.URL,
			description: md.Description,
			date:        md.Date,
			image:       md.Image,
			similarity:  m.Similarity(),
			score:       m.Similarity() * semanticCeiling,
		})
	}

	return rank(cands, order, req.Limit()), nil
}

// rank sorts candidates descending by fused score, breaking ties by
// slug ascending so equal scores order the same way on every run.
func rank(cands map[string]*candidate, order []string, limit int) []domrel.Item {
	sorted := make([]*candidate, 0, len(cands))
	for _, slug := range order {
		sorted = append(sorted, cands[slug])
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].slug < sorted[j].slug
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]domrel.Item, 0, len(sorted))
	for _, c := range sorted {
		items = append(items, domrel.NewItem(
			c.slug, c.title, c.url, c.description, c.date, c.image, c.similarity,
		))
	}
	return items
}

func findBySlug(posts []dompost.Post, slug string) (*dompost.Post, bool) {
	if slug == "" {
		return nil, false
	}
	for i := range posts {
		if posts[i].Slug() == slug {
			return &posts[i], true
		}
	}
	return nil, false
}
