package usecase

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/logger"
	"hacker-feed/infrastructure/scraper"
)

// IStoryUsecase serves enriched story pages.
type IStoryUsecase interface {
	GetPage(ctx context.Context, category string, page int) ([]model.Story, error)
}

// Config bundles pagination, batching and TTL tuning for the feed.
type Config struct {
	PageSize      int
	BatchSize     int
	BatchDelay    time.Duration
	MetadataLimit int
	ListTTL       time.Duration
	StoryTTL      time.Duration
	MetadataTTL   time.Duration
	PageTTL       time.Duration
}

func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = 30
	}
	if c.BatchSize == 0 {
		c.BatchSize = 5
	}
	if c.BatchDelay == 0 {
		c.BatchDelay = 500 * time.Millisecond
	}
	if c.MetadataLimit == 0 {
		c.MetadataLimit = 10
	}
	if c.ListTTL == 0 {
		c.ListTTL = 30 * time.Minute
	}
	if c.StoryTTL == 0 {
		c.StoryTTL = 30 * time.Minute
	}
	if c.MetadataTTL == 0 {
		c.MetadataTTL = 12 * time.Hour
	}
	if c.PageTTL == 0 {
		c.PageTTL = 5 * time.Minute
	}
}

type storyUsecase struct {
	hn        repository.IHackerNews
	cache     repository.IFeedCache
	extractor repository.IMetadataExtractor
	favicon   repository.IFaviconResolver
	sanitizer *scraper.Sanitizer
	cfg       Config
}

func NewStoryUsecase(
	hn repository.IHackerNews,
	feedCache repository.IFeedCache,
	extractor repository.IMetadataExtractor,
	favicon repository.IFaviconResolver,
	sanitizer *scraper.Sanitizer,
	cfg Config,
) IStoryUsecase {
	cfg.applyDefaults()
	return &storyUsecase{
		hn:        hn,
		cache:     feedCache,
		extractor: extractor,
		favicon:   favicon,
		sanitizer: sanitizer,
		cfg:       cfg,
	}
}

// GetPage returns the enriched stories for one page of a category,
// preserving upstream rank order within the slice. Requesting beyond the
// available range yields an empty slice, signalling no more data.
func (u *storyUsecase) GetPage(ctx context.Context, category string, page int) ([]model.Story, error) {
	category = model.NormalizeCategory(category)
	if page < 1 {
		page = 1
	}

	if cached, err := u.cache.GetPage(ctx, category, page); err == nil && cached != nil {
		return cached, nil
	}

	ids, err := u.storyIDs(ctx, category)
	if err != nil {
		// The only failure that surfaces to the caller: without the
		// listing there is nothing to degrade to.
		return nil, err
	}

	start := (page - 1) * u.cfg.PageSize
	if start >= len(ids) {
		return []model.Story{}, nil
	}
	end := start + u.cfg.PageSize
	if end > len(ids) {
		end = len(ids)
	}
	window := ids[start:end]

	stories := make([]model.Story, len(window))
	cached, _ := u.cache.GetStories(ctx, window)
	var missing []int
	for i, id := range window {
		if s := cached[id]; s != nil {
			stories[i] = *s
		} else {
			missing = append(missing, i)
		}
	}

	enriched, err := u.enrichBatches(ctx, window, stories, missing)
	if err != nil {
		return nil, err
	}

	_ = u.cache.SetStories(ctx, enriched, u.cfg.StoryTTL)
	_ = u.cache.SetPage(ctx, category, page, stories, u.cfg.PageTTL)
	return stories, nil
}

// enrichBatches fills the missing slots in bounded-size sequential
// batches with a short pause in between to smooth load on upstream
// sites. Enrichment within a batch is all-settled: one story's failure
// never aborts its siblings. Newly assembled records (fallbacks
// included) are returned for write-back.
func (u *storyUsecase) enrichBatches(ctx context.Context, window []int64, stories []model.Story, missing []int) ([]*model.Story, error) {
	enriched := make([]*model.Story, 0, len(missing))
	for batchStart := 0; batchStart < len(missing); batchStart += u.cfg.BatchSize {
		// The caller may have gone away; in-flight fetches from the
		// previous batch still populate the cache best-effort.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batchEnd := batchStart + u.cfg.BatchSize
		if batchEnd > len(missing) {
			batchEnd = len(missing)
		}
		batch := missing[batchStart:batchEnd]

		var wg sync.WaitGroup
		for _, idx := range batch {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				stories[idx] = u.enrichStory(ctx, window[idx], idx)
			}(idx)
		}
		wg.Wait()

		for _, idx := range batch {
			story := stories[idx]
			enriched = append(enriched, &story)
		}

		if batchEnd < len(missing) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(u.cfg.BatchDelay):
			}
		}
	}
	return enriched, nil
}

// enrichStory assembles the final record for one story. rank is the
// story's index within the requested page and bounds how many stories
// per page get full metadata fetches. It never fails: any error yields a
// well-formed fallback record.
func (u *storyUsecase) enrichStory(ctx context.Context, id int64, rank int) model.Story {
	item, err := u.hn.Item(ctx, id)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"id": id, "error": err}).Warn("Upstream item fetch failed")
		return model.FallbackStory(id)
	}

	story := model.Story{
		ID:          id,
		Title:       item.Title,
		URL:         item.URL,
		Score:       item.Score,
		Time:        item.Time,
		By:          item.By,
		Descendants: item.Descendants,
		Image:       model.PlaceholderImage,
	}
	if story.URL == "" {
		// Self/text posts link to their own discussion page.
		story.URL = model.DiscussionURL(id)
	}

	switch {
	case isDiscussionHost(story.URL):
		// Self-referential posts need no scraping.
		story.Image = model.HackerNewsLogo
	default:
		if videoID := scraper.VideoIDFromURL(story.URL); videoID != "" {
			// Deterministic and free, so set regardless of rank.
			story.Image = scraper.VideoThumbnail(videoID)
		}
		if item.URL != "" && rank < u.cfg.MetadataLimit {
			meta := u.metadata(ctx, item.URL)
			if meta.Image != model.PlaceholderImage {
				story.Image = meta.Image
			}
			story.Description = meta.Description
		}
		if story.Image == model.PlaceholderImage && item.URL != "" {
			story.Image = u.favicon.Resolve(ctx, item.URL)
		}
	}

	story.Description = u.sanitizer.Truncate(u.sanitizer.Clean(story.Description), scraper.MaxDescriptionLength)
	return story
}

// metadata reads through the per-URL cache, invoking the extractor on a
// miss and writing the result back.
func (u *storyUsecase) metadata(ctx context.Context, target string) model.Metadata {
	if cached, err := u.cache.GetMetadata(ctx, target); err == nil && cached != nil {
		return *cached
	}
	meta := u.extractor.Extract(ctx, target)
	if err := u.cache.SetMetadata(ctx, target, &meta, u.cfg.MetadataTTL); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"url": target, "error": err}).Debug("Metadata cache write failed")
	}
	return meta
}

func (u *storyUsecase) storyIDs(ctx context.Context, category string) ([]int64, error) {
	if ids, err := u.cache.GetStoryIDs(ctx, category); err == nil && len(ids) > 0 {
		return ids, nil
	}
	ids, err := u.hn.StoryIDs(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := u.cache.SetStoryIDs(ctx, category, ids, u.cfg.ListTTL); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"category": category, "error": err}).Debug("Listing cache write failed")
	}
	return ids, nil
}

func isDiscussionHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "news.ycombinator.com"
}
