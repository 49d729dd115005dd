package scraper

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"hacker-feed/domain/model"
	"hacker-feed/domain/repository"
	"hacker-feed/infrastructure/logger"

	"github.com/PuerkitoBio/goquery"
)

// MaxDescriptionLength bounds every description served to the feed.
const MaxDescriptionLength = 200

const bodySnippetLength = 300

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// metaSelector identifies a meta tag by attribute name and value,
// matched case-insensitively.
type metaSelector struct {
	attr string
	name string
}

// descriptionCascade is evaluated in order; the first non-empty content
// wins. Kept as data so the order is independently testable.
var descriptionCascade = []metaSelector{
	{"property", "og:description"},
	{"name", "description"},
	{"name", "twitter:description"},
	{"name", "citation_abstract"},
	{"property", "dc.description"},
	{"name", "dc.description"},
	{"name", "abstract"},
}

// imageCascade is evaluated in order; the first non-empty candidate wins.
var imageCascade = []func(doc *goquery.Document) string{
	func(doc *goquery.Document) string { return metaContent(doc, "property", "og:image") },
	func(doc *goquery.Document) string { return metaContent(doc, "name", "twitter:image") },
	func(doc *goquery.Document) string { return metaContent(doc, "itemprop", "image") },
	linkImageSrc,
	cmsThumbnail,
	largeInlineImage,
}

// ExtractorOptions tunes the page fetch.
type ExtractorOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
}

// Extractor fetches a target page and extracts an image and description
// through ordered cascades of selectors and heuristics. It never returns
// an error: every failure degrades to the placeholder result.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	sanitizer  *Sanitizer
	youtube    repository.IYouTube // optional; nil disables API descriptions
}

func NewExtractor(opts ExtractorOptions, sanitizer *Sanitizer, youtube repository.IYouTube) repository.IMetadataExtractor {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 5
	}
	return &Extractor{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= opts.MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		sanitizer: sanitizer,
		youtube:   youtube,
	}
}

func (e *Extractor) Extract(ctx context.Context, pageURL string) model.Metadata {
	meta := model.Metadata{Image: model.PlaceholderImage}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return meta
	}

	doc := e.fetch(ctx, pageURL)
	if doc != nil {
		if img := extractImage(doc, base); img != "" {
			meta.Image = img
		}
		meta.Description = e.extractDescription(doc, pageURL)
	}

	// Video links get the platform's deterministic thumbnail regardless
	// of what the page advertises: it is more reliable and free.
	if videoID := VideoID(base); videoID != "" {
		meta.Image = VideoThumbnail(videoID)
		if e.youtube != nil {
			if desc, err := e.youtube.VideoDescription(ctx, videoID); err == nil && desc != "" {
				meta.Description = desc
			} else if err != nil {
				logger.GetLogger().WithField("error", err).Debug("YouTube description lookup failed")
			}
		}
	}

	desc := e.sanitizer.Truncate(e.sanitizer.Clean(meta.Description), MaxDescriptionLength)
	if e.sanitizer.IsGibberish(desc) {
		desc = ""
	}
	meta.Description = desc
	return meta
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) *goquery.Document {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"url": pageURL, "error": err}).Debug("Page fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"url": pageURL, "error": err}).Debug("Page parse failed")
		return nil
	}
	return doc
}

func (e *Extractor) extractDescription(doc *goquery.Document, pageURL string) string {
	// Binary content behind a direct PDF link is not worth parsing.
	if isPDFLink(pageURL) {
		return ""
	}

	for _, sel := range descriptionCascade {
		if content := metaContent(doc, sel.attr, sel.name); content != "" {
			return content
		}
	}
	if abstract := strings.TrimSpace(doc.Find("p.abstract").First().Text()); abstract != "" {
		return abstract
	}

	// No meta description: scan paragraphs longest-first as a proxy for
	// main content and take the first that survives sanitization.
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	sort.SliceStable(paragraphs, func(i, j int) bool {
		return len(paragraphs[i]) > len(paragraphs[j])
	})
	for _, p := range paragraphs {
		cleaned := e.sanitizer.Clean(p)
		if cleaned != "" && !e.sanitizer.IsGibberish(cleaned) {
			return cleaned
		}
	}

	// Last resort: a snippet of the page's visible text.
	body := strings.TrimSpace(doc.Find("body").Text())
	if body == "" {
		return ""
	}
	snippet := body
	if len(snippet) > bodySnippetLength {
		snippet = snippet[:bodySnippetLength] + truncationMarker
	}
	cleaned := e.sanitizer.Clean(snippet)
	if cleaned == "" || e.sanitizer.IsGibberish(cleaned) {
		return ""
	}
	return cleaned
}

func extractImage(doc *goquery.Document, base *url.URL) string {
	for _, extract := range imageCascade {
		if img := extract(doc); img != "" {
			return absoluteURL(img, base)
		}
	}
	return ""
}

// metaContent returns the content of the first meta tag whose attr
// matches name case-insensitively. Scraped pages disagree on attribute
// casing, so a plain selector is not enough.
func metaContent(doc *goquery.Document, attr, name string) string {
	var out string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		if !ok || !strings.EqualFold(v, name) {
			return true
		}
		if content := strings.TrimSpace(s.AttrOr("content", "")); content != "" {
			out = content
			return false
		}
		return true
	})
	return out
}

func linkImageSrc(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(`link[rel="image_src"]`).First().AttrOr("href", ""))
}

// cmsThumbnail covers the featured-image containers common CMS themes
// render around the lead image.
func cmsThumbnail(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(".featured-image img, .post-thumbnail img").First().AttrOr("src", ""))
}

// largeInlineImage picks the first <img> whose explicit width and height
// attributes both exceed 200px, skipping icons and tracking pixels.
func largeInlineImage(doc *goquery.Document) string {
	var out string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		width, errW := strconv.Atoi(s.AttrOr("width", ""))
		height, errH := strconv.Atoi(s.AttrOr("height", ""))
		if errW != nil || errH != nil || width <= 200 || height <= 200 {
			return true
		}
		if src := strings.TrimSpace(s.AttrOr("src", "")); src != "" {
			out = src
			return false
		}
		return true
	})
	return out
}

func absoluteURL(raw string, base *url.URL) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func isPDFLink(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// VideoID returns the 11-character video identifier when u points at a
// known video-hosting domain, or "" otherwise.
func VideoID(u *url.URL) string {
	switch normalizeHost(u.Host) {
	case "youtube.com", "m.youtube.com", "youtu.be":
	default:
		return ""
	}
	m := videoIDPattern.FindStringSubmatch(u.String())
	if m == nil {
		return ""
	}
	return m[1]
}

// VideoIDFromURL is VideoID for a raw URL string.
func VideoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return VideoID(u)
}

// VideoThumbnail builds the platform's predictable thumbnail URL.
func VideoThumbnail(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
