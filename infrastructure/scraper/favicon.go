package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-querystring/query"
)

const (
	arxivLogoURL          = "https://static.arxiv.org/static/browse/0.3.4/images/arxiv-logo-fb.png"
	googleFaviconEndpoint = "https://www.google.com/s2/favicons"
	googleFaviconIconSize = 64
)

// faviconQuery is the query string for the favicon-by-domain service.
type faviconQuery struct {
	Domain string `url:"domain"`
	Size   int    `url:"sz"`
}

// ResolverOptions tunes the favicon probes and the domain-cache TTL.
type ResolverOptions struct {
	UserAgent    string
	ProbeTimeout time.Duration
	PageTimeout  time.Duration
	CacheTTL     time.Duration
	// ServiceEndpoint overrides the favicon-by-domain service base URL.
	ServiceEndpoint string
}

// FaviconResolver resolves a best-effort icon URL for a page's domain
// through an ordered fallback cascade, writing through the shared cache
// at whichever step succeeds. It never returns an error: malformed input
// and exhausted cascades yield the placeholder sentinel.
type FaviconResolver struct {
	probeClient     *http.Client
	pageClient      *http.Client
	userAgent       string
	cache           repository.IFeedCache
	cacheTTL        time.Duration
	serviceEndpoint string
}

func NewFaviconResolver(opts ResolverOptions, feedCache repository.IFeedCache) repository.IFaviconResolver {
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if opts.PageTimeout == 0 {
		opts.PageTimeout = 10 * time.Second
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.ServiceEndpoint == "" {
		opts.ServiceEndpoint = googleFaviconEndpoint
	}
	return &FaviconResolver{
		probeClient:     &http.Client{Timeout: opts.ProbeTimeout},
		pageClient:      &http.Client{Timeout: opts.PageTimeout},
		userAgent:       opts.UserAgent,
		cache:           feedCache,
		cacheTTL:        opts.CacheTTL,
		serviceEndpoint: opts.ServiceEndpoint,
	}
}

func (r *FaviconResolver) Resolve(ctx context.Context, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return model.PlaceholderImage
	}
	domain := normalizeHost(base.Hostname())

	if icon, ok, _ := r.cache.GetFavicon(ctx, domain); ok {
		return icon
	}

	// Known preprint host serves no usable favicon; its logo is a
	// constant, so the generic domain cache is skipped.
	if domain == "arxiv.org" || strings.HasSuffix(domain, ".arxiv.org") {
		return arxivLogoURL
	}

	origin := base.Scheme + "://" + base.Host

	if icoURL := origin + "/favicon.ico"; r.exists(ctx, icoURL) {
		r.store(ctx, domain, icoURL)
		return icoURL
	}

	if icon := r.fromPage(ctx, pageURL, base); icon != "" {
		r.store(ctx, domain, icon)
		return icon
	}

	if icon := r.fromService(ctx, domain); icon != "" {
		r.store(ctx, domain, icon)
		return icon
	}

	// Caching the placeholder prevents re-running the whole cascade for
	// icon-less domains on every request.
	r.store(ctx, domain, model.PlaceholderImage)
	return model.PlaceholderImage
}

// exists performs a lightweight HEAD existence check.
func (r *FaviconResolver) exists(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fromPage fetches the page itself and reads its icon link tags.
func (r *FaviconResolver) fromPage(ctx context.Context, pageURL string, base *url.URL) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.pageClient.Do(req)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"url": pageURL, "error": err}).Debug("Favicon page fetch failed")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	href := strings.TrimSpace(doc.Find(`link[rel="icon"], link[rel="shortcut icon"]`).First().AttrOr("href", ""))
	if href == "" {
		return ""
	}
	return absoluteURL(href, base)
}

// fromService queries the favicon-by-domain service as a last resort and
// verifies the result actually resolves.
func (r *FaviconResolver) fromService(ctx context.Context, domain string) string {
	values, err := query.Values(faviconQuery{Domain: domain, Size: googleFaviconIconSize})
	if err != nil {
		return ""
	}
	serviceURL := r.serviceEndpoint + "?" + values.Encode()
	if !r.exists(ctx, serviceURL) {
		return ""
	}
	return serviceURL
}

func (r *FaviconResolver) store(ctx context.Context, domain, iconURL string) {
	if err := r.cache.SetFavicon(ctx, domain, iconURL, r.cacheTTL); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"domain": domain, "error": err}).Debug("Favicon cache write failed")
	}
}
