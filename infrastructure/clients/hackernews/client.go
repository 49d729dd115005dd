package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
)

// Client talks to the Hacker News Firebase API.
type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(host string, timeout time.Duration) repository.IHackerNews {
	return &Client{
		host: host,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StoryIDs fetches the ranked id list for a category. The upstream list
// occasionally repeats ids, so duplicates are dropped while preserving
// upstream ranking order.
func (c *Client) StoryIDs(ctx context.Context, category string) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s.json", c.host, category), &ids); err != nil {
		return nil, fmt.Errorf("fetch %s ids: %w", category, err)
	}
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique, nil
}

// Item fetches a single raw story record. The API returns the JSON null
// literal for unknown ids, which decodes to a zero item and is reported
// as an error.
func (c *Client) Item(ctx context.Context, id int64) (*model.Item, error) {
	var item *model.Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.host, id), &item); err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	item.ID = id
	return item, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
