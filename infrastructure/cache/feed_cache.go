package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// Key prefixes per cache layer. Values are JSON-encoded.
const (
	keyStoryIDs = "hn:ids:"
	keyStory    = "hn:story:"
	keyMetadata = "hn:meta:"
	keyFavicon  = "hn:favicon:"
	keyPage     = "hn:page:"
)

// FeedCache implements repository.IFeedCache on Redis. A nil client is a
// valid state: every read reports a miss and every write is a no-op, so
// the pipeline recomputes instead of failing.
type FeedCache struct {
	rdb *redis.Client
}

func NewFeedCache(rdb *redis.Client) repository.IFeedCache {
	return &FeedCache{rdb: rdb}
}

func (c *FeedCache) GetStoryIDs(ctx context.Context, category string) ([]int64, error) {
	var ids []int64
	ok, err := c.getJSON(ctx, keyStoryIDs+category, &ids)
	if err != nil || !ok {
		return nil, err
	}
	return ids, nil
}

func (c *FeedCache) SetStoryIDs(ctx context.Context, category string, ids []int64, ttl time.Duration) error {
	return c.setJSON(ctx, keyStoryIDs+category, ids, ttl)
}

func (c *FeedCache) GetStory(ctx context.Context, id int64) (*model.Story, error) {
	var story model.Story
	ok, err := c.getJSON(ctx, storyKey(id), &story)
	if err != nil || !ok {
		return nil, err
	}
	return &story, nil
}

func (c *FeedCache) SetStory(ctx context.Context, story *model.Story, ttl time.Duration) error {
	return c.setJSON(ctx, storyKey(story.ID), story, ttl)
}

// GetStories batch-reads story keys with a single MGET.
func (c *FeedCache) GetStories(ctx context.Context, ids []int64) (map[int64]*model.Story, error) {
	out := make(map[int64]*model.Story, len(ids))
	if c.rdb == nil || len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = storyKey(id)
	}
	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache MGET failed")
		return out, err
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var story model.Story
		if err := json.Unmarshal([]byte(raw), &story); err != nil {
			continue
		}
		out[ids[i]] = &story
	}
	return out, nil
}

// SetStories writes all stories in one pipelined round trip.
func (c *FeedCache) SetStories(ctx context.Context, stories []*model.Story, ttl time.Duration) error {
	if c.rdb == nil || len(stories) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, story := range stories {
			raw, mErr := json.Marshal(story)
			if mErr != nil {
				return mErr
			}
			pipe.Set(ctx, storyKey(story.ID), raw, ttl)
		}
		return nil
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache pipelined SET failed")
	}
	return err
}

func (c *FeedCache) GetMetadata(ctx context.Context, pageURL string) (*model.Metadata, error) {
	var meta model.Metadata
	ok, err := c.getJSON(ctx, keyMetadata+pageURL, &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

func (c *FeedCache) SetMetadata(ctx context.Context, pageURL string, meta *model.Metadata, ttl time.Duration) error {
	return c.setJSON(ctx, keyMetadata+pageURL, meta, ttl)
}

func (c *FeedCache) GetFavicon(ctx context.Context, domain string) (string, bool, error) {
	if c.rdb == nil {
		return "", false, nil
	}
	val, err := c.rdb.Get(ctx, keyFavicon+NormalizeDomain(domain)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache GET failed")
		return "", false, err
	}
	return val, true, nil
}

func (c *FeedCache) SetFavicon(ctx context.Context, domain, iconURL string, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Set(ctx, keyFavicon+NormalizeDomain(domain), iconURL, ttl).Err()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache SET failed")
	}
	return err
}

func (c *FeedCache) GetPage(ctx context.Context, category string, page int) ([]model.Story, error) {
	var stories []model.Story
	ok, err := c.getJSON(ctx, pageKey(category, page), &stories)
	if err != nil || !ok {
		return nil, err
	}
	return stories, nil
}

func (c *FeedCache) SetPage(ctx context.Context, category string, page int, stories []model.Story, ttl time.Duration) error {
	return c.setJSON(ctx, pageKey(category, page), stories, ttl)
}

func (c *FeedCache) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache GET failed")
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt entry: treat as miss so it gets recomputed and overwritten.
		logger.GetLogger().WithFields(map[string]interface{}{"key": key, "error": err}).Warn("Cache entry not decodable")
		return false, nil
	}
	return true, nil
}

func (c *FeedCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cache SET failed")
		return err
	}
	return nil
}

func storyKey(id int64) string {
	return fmt.Sprintf("%s%d", keyStory, id)
}

func pageKey(category string, page int) string {
	return fmt.Sprintf("%s%s:%d", keyPage, category, page)
}

// NormalizeDomain strips a leading "www." so www and bare hosts share a
// favicon entry.
func NormalizeDomain(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
