package model

import "fmt"

// Image sentinels shared across the enrichment pipeline.
const (
	PlaceholderImage = "/placeholder.jpg"
	HackerNewsLogo   = "/hn-logo.png"
)

// Story categories as named by the upstream API.
const (
	CategoryTop  = "topstories"
	CategoryNew  = "newstories"
	CategoryBest = "beststories"
	CategoryAsk  = "askstories"
	CategoryShow = "showstories"
	CategoryJobs = "jobstories"
)

// Categories maps accepted request values (short aliases and full names)
// to upstream category names.
var Categories = map[string]string{
	"top":        CategoryTop,
	"new":        CategoryNew,
	"best":       CategoryBest,
	"ask":        CategoryAsk,
	"show":       CategoryShow,
	"jobs":       CategoryJobs,
	CategoryTop:  CategoryTop,
	CategoryNew:  CategoryNew,
	CategoryBest: CategoryBest,
	CategoryAsk:  CategoryAsk,
	CategoryShow: CategoryShow,
	CategoryJobs: CategoryJobs,
}

// NormalizeCategory resolves a request value to an upstream category name.
// Unknown or empty values fall back to the top-stories category.
func NormalizeCategory(v string) string {
	if c, ok := Categories[v]; ok {
		return c
	}
	return CategoryTop
}

// Item is a raw story record as returned by the upstream item endpoint.
// URL is empty for self/text posts.
type Item struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	By          string `json:"by"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
}

// Story is the enriched record served to the feed. Image and Description
// are always present: Image defaults to the placeholder sentinel and
// Description is empty rather than gibberish.
type Story struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	By          string `json:"by"`
	Descendants int    `json:"descendants"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Metadata is the per-URL scrape result. Both fields are always populated
// (placeholder image / empty description on failure).
type Metadata struct {
	Image       string `json:"image"`
	Description string `json:"description"`
}

// DiscussionURL builds the canonical discussion-page URL for a story id,
// used for self posts and as the fallback link on enrichment failure.
func DiscussionURL(id int64) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
}

// FallbackStory is the well-formed record cached and served when a story
// cannot be fetched or enriched at all.
func FallbackStory(id int64) Story {
	return Story{
		ID:          id,
		Title:       "Error fetching story",
		URL:         DiscussionURL(id),
		Image:       PlaceholderImage,
		Description: "",
	}
}
