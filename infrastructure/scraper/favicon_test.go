package scraper_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/scraper"

	"github.com/stretchr/testify/assert"
)

// fakeFaviconCache implements the favicon slice of repository.IFeedCache
// in memory; the remaining methods are unused no-ops.
type fakeFaviconCache struct {
	mu     sync.Mutex
	icons  map[string]string
	writes int
}

func newFakeFaviconCache() *fakeFaviconCache {
	return &fakeFaviconCache{icons: map[string]string{}}
}

func (f *fakeFaviconCache) GetFavicon(_ context.Context, domain string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	icon, ok := f.icons[domain]
	return icon, ok, nil
}

func (f *fakeFaviconCache) SetFavicon(_ context.Context, domain, iconURL string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.icons[domain] = iconURL
	f.writes++
	return nil
}

func (f *fakeFaviconCache) GetStoryIDs(context.Context, string) ([]int64, error) { return nil, nil }
func (f *fakeFaviconCache) SetStoryIDs(context.Context, string, []int64, time.Duration) error {
	return nil
}
func (f *fakeFaviconCache) GetStory(context.Context, int64) (*model.Story, error) { return nil, nil }
func (f *fakeFaviconCache) SetStory(context.Context, *model.Story, time.Duration) error {
	return nil
}
func (f *fakeFaviconCache) GetStories(context.Context, []int64) (map[int64]*model.Story, error) {
	return map[int64]*model.Story{}, nil
}
func (f *fakeFaviconCache) SetStories(context.Context, []*model.Story, time.Duration) error {
	return nil
}
func (f *fakeFaviconCache) GetMetadata(context.Context, string) (*model.Metadata, error) {
	return nil, nil
}
func (f *fakeFaviconCache) SetMetadata(context.Context, string, *model.Metadata, time.Duration) error {
	return nil
}
func (f *fakeFaviconCache) GetPage(context.Context, string, int) ([]model.Story, error) {
	return nil, nil
}
func (f *fakeFaviconCache) SetPage(context.Context, string, int, []model.Story, time.Duration) error {
	return nil
}

var _ repository.IFeedCache = (*fakeFaviconCache)(nil)

func newResolver(feedCache repository.IFeedCache, serviceEndpoint string) repository.IFaviconResolver {
	return scraper.NewFaviconResolver(scraper.ResolverOptions{
		UserAgent:       "test-agent",
		ServiceEndpoint: serviceEndpoint,
	}, feedCache)
}

func TestResolve_FaviconIcoProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, srv.URL+"/s2")

	icon := resolver.Resolve(context.Background(), srv.URL+"/some/page")

	assert.Equal(t, srv.URL+"/favicon.ico", icon)
	assert.Equal(t, 1, feedCache.writes, "successful step writes through the cache")
}

func TestResolve_PageLinkIconBeatsThirdParty(t *testing.T) {
	var serviceHit bool
	mux := http.NewServeMux()
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><link rel="icon" href="/icon.png"></head><body></body></html>`)
	})
	mux.HandleFunc("/s2", func(w http.ResponseWriter, r *http.Request) {
		serviceHit = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, srv.URL+"/s2")

	icon := resolver.Resolve(context.Background(), srv.URL+"/page")

	assert.Equal(t, srv.URL+"/icon.png", icon, "page link icon resolved to absolute form")
	assert.False(t, serviceHit, "third-party service must not be consulted when the page has an icon")
}

func TestResolve_ThirdPartyLastResort(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/s2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, srv.URL+"/s2")

	icon := resolver.Resolve(context.Background(), srv.URL+"/page")

	assert.Contains(t, icon, srv.URL+"/s2?")
	assert.Contains(t, icon, "domain=")
}

func TestResolve_ExhaustedCachesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, srv.URL+"/s2")

	icon := resolver.Resolve(context.Background(), srv.URL+"/page")

	assert.Equal(t, model.PlaceholderImage, icon)
	assert.Equal(t, 1, feedCache.writes, "exhaustion is cached to avoid repeating the cascade")
}

func TestResolve_CacheHitShortCircuits(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, srv.URL+"/s2")

	first := resolver.Resolve(context.Background(), srv.URL+"/page")
	hitsAfterFirst := hits
	second := resolver.Resolve(context.Background(), srv.URL+"/page")

	assert.Equal(t, first, second)
	assert.Equal(t, hitsAfterFirst, hits, "second resolve served from cache")
}

func TestResolve_ArxivLogo(t *testing.T) {
	feedCache := newFakeFaviconCache()
	resolver := newResolver(feedCache, "http://127.0.0.1:1/s2")

	icon := resolver.Resolve(context.Background(), "https://arxiv.org/abs/2401.00001")

	assert.Contains(t, icon, "arxiv")
	assert.Equal(t, 0, feedCache.writes, "constant logo is not written to the domain cache")
}

func TestResolve_MalformedURL(t *testing.T) {
	resolver := newResolver(newFakeFaviconCache(), "http://127.0.0.1:1/s2")

	assert.Equal(t, model.PlaceholderImage, resolver.Resolve(context.Background(), "::bad::"))
	assert.Equal(t, model.PlaceholderImage, resolver.Resolve(context.Background(), ""))
}
