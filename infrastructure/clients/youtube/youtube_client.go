package youtube

import (
	"context"
	"errors"
	"fmt"

	"hacker-feed/domain/repository"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// Client is a read-only YouTube Data API client (API key mode). It is an
// optional collaborator: when no key is configured the extractor works
// without it and video descriptions come from the scraped page instead.
type Client struct {
	service *youtube.Service
}

func NewYouTubeClient(ctx context.Context, apiKey string) (repository.IYouTube, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key not configured")
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{service: service}, nil
}

// VideoDescription returns the snippet description for a video id, or ""
// when the video has none.
func (c *Client) VideoDescription(ctx context.Context, videoID string) (string, error) {
	resp, err := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("videos.list %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", nil
	}
	return resp.Items[0].Snippet.Description, nil
}
