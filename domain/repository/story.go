package repository

import (
	"context"

	"hacker-feed/domain/model"
)

// IHackerNews is the upstream story API.
type IHackerNews interface {
	// StoryIDs returns the ranked id list for a category, deduplicated
	// while preserving upstream order.
	StoryIDs(ctx context.Context, category string) ([]int64, error)
	// Item returns a single raw story record.
	Item(ctx context.Context, id int64) (*model.Item, error)
}

// IMetadataExtractor scrapes image and description candidates from a page.
// Implementations never fail: errors degrade to the placeholder result.
type IMetadataExtractor interface {
	Extract(ctx context.Context, pageURL string) model.Metadata
}

// IFaviconResolver resolves a best-effort icon URL for a page's domain.
// Implementations never fail: errors degrade to the placeholder sentinel.
type IFaviconResolver interface {
	Resolve(ctx context.Context, pageURL string) string
}

// IYouTube looks up video metadata from the YouTube Data API.
type IYouTube interface {
	VideoDescription(ctx context.Context, videoID string) (string, error)
}
