package related

// Item is a single ranked related-content result. The internal fused
// score is stripped before items leave the engine; similarity is the
// only relevance number callers see.
type Item struct {
	slug        string
	title       string
	url         string
	description string
	date        string
	image       string
	similarity  float64
}

// NewItem creates a ranked result item.
func NewItem(slug, title, url, description, date, image string, similarity float64) Item {
	return Item{
		slug:        slug,
		title:       title,
		url:         url,
		description: description,
		date:        date,
		image:       image,
		similarity:  similarity,
	}
}

// Slug returns the item identifier.
func (i *Item) Slug() string { return i.slug }

// Title returns the display title.
func (i *Item) Title() string { return i.title }

// URL returns the item's URL.
func (i *Item) URL() string { return i.url }

// Description returns the display description.
func (i *Item) Description() string { return i.description }

// Date returns the ISO publish date.
func (i *Item) Date() string { return i.date }

// Image returns the cover image reference, possibly empty.
func (i *Item) Image() string { return i.image }

// Similarity returns the display-facing relevance in [0,1]. Its meaning
// depends on which signal produced the item: 1.0 for series members,
// the shared-tag fraction for tag matches, the raw embedding similarity
// for purely semantic hits.
func (i *Item) Similarity() float64 { return i.similarity }
