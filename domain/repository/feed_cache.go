package repository

import (
	"context"
	"time"

	"hacker-feed/domain/model"
)

// IFeedCache is the shared key-value cache behind every pipeline layer:
// category id lists, enriched stories, per-URL metadata, per-domain
// favicons and assembled pages. Implementations must tolerate concurrent
// readers/writers; a cold or unavailable store reports misses and accepts
// writes as no-ops so callers fall through to direct computation.
type IFeedCache interface {
	// GetStoryIDs returns the cached ranked id list for a category, or nil on miss.
	GetStoryIDs(ctx context.Context, category string) ([]int64, error)
	SetStoryIDs(ctx context.Context, category string, ids []int64, ttl time.Duration) error

	// GetStory returns a cached enriched story, or nil on miss.
	GetStory(ctx context.Context, id int64) (*model.Story, error)
	SetStory(ctx context.Context, story *model.Story, ttl time.Duration) error
	// GetStories batch-reads enriched stories, keyed by id. Missing ids are absent.
	GetStories(ctx context.Context, ids []int64) (map[int64]*model.Story, error)
	// SetStories writes a batch of enriched stories in one pipelined round trip.
	SetStories(ctx context.Context, stories []*model.Story, ttl time.Duration) error

	// GetMetadata returns the cached scrape result for a target URL, or nil on miss.
	GetMetadata(ctx context.Context, pageURL string) (*model.Metadata, error)
	SetMetadata(ctx context.Context, pageURL string, meta *model.Metadata, ttl time.Duration) error

	// GetFavicon returns the cached icon URL for a normalized domain.
	// The second return reports whether the key was present (the cached
	// value may legitimately be the placeholder sentinel).
	GetFavicon(ctx context.Context, domain string) (string, bool, error)
	SetFavicon(ctx context.Context, domain, iconURL string, ttl time.Duration) error

	// GetPage returns a previously assembled page, or nil on miss.
	GetPage(ctx context.Context, category string, page int) ([]model.Story, error)
	SetPage(ctx context.Context, category string, page int, stories []model.Story, ttl time.Duration) error
}
