package scraper

import (
	"regexp"
	"strings"
)

const truncationMarker = "..."

var (
	urlPattern         = regexp.MustCompile(`https?://[^\s]+`)
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	trackingKeyPattern = regexp.MustCompile(`AUI_[A-Z0-9_]+`)
)

// LineFilter reports whether a cleaned line should be discarded.
type LineFilter func(line string) bool

// GibberishRule reports whether text is unusable as a description.
type GibberishRule func(text string) bool

// Sanitizer cleans raw text scraped from arbitrary pages. The line filter
// and gibberish rules were tuned against observed bad pages (inline
// script remnants, PDF dumps, tracking-key blobs) and are held as
// replaceable slices rather than baked-in logic.
type Sanitizer struct {
	lineFilters    []LineFilter
	gibberishRules []GibberishRule
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		lineFilters:    DefaultLineFilters(),
		gibberishRules: DefaultGibberishRules(),
	}
}

// NewSanitizerWithRules builds a sanitizer with a custom rule set.
func NewSanitizerWithRules(lineFilters []LineFilter, gibberishRules []GibberishRule) *Sanitizer {
	return &Sanitizer{lineFilters: lineFilters, gibberishRules: gibberishRules}
}

// DefaultLineFilters drops lines that are too short to be prose, look
// like leftover script/style code, are comment syntax, or are
// JSON-object-shaped.
func DefaultLineFilters() []LineFilter {
	return []LineFilter{
		func(line string) bool { return len(line) < 10 },
		looksLikeCode,
		isCommentSyntax,
		isJSONShaped,
	}
}

// DefaultGibberishRules flag PDF dumps, raw CSS declarations,
// JSON-object literals and tracking-key blobs.
func DefaultGibberishRules() []GibberishRule {
	return []GibberishRule{
		func(text string) bool { return strings.HasPrefix(text, "%PDF") },
		func(text string) bool {
			return strings.Contains(text, "font-family:") || strings.Contains(text, "text-anchor:")
		},
		isJSONShaped,
		func(text string) bool { return len(trackingKeyPattern.FindAllString(text, 2)) > 1 },
	}
}

// Clean strips URLs, HTML tags and non-printable/non-ASCII bytes, then
// drops lines rejected by the line filters and rejoins the survivors
// with spaces. Raw page dumps frequently carry inline script and style
// remnants that survive tag stripping, hence the per-line pass.
func (s *Sanitizer) Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")

	// Keep newlines until the per-line pass, drop everything else
	// outside printable ASCII.
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || (r >= 0x20 && r <= 0x7E) {
			b.WriteRune(r)
		}
	}

	var kept []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || s.dropLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

// Truncate hard-cuts at maxLen characters and appends an ellipsis marker.
// It does not respect word boundaries.
func (s *Sanitizer) Truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + truncationMarker
}

// IsGibberish reports whether text is unusable as a description. Callers
// discard flagged text and fall through to the next cascade step.
func (s *Sanitizer) IsGibberish(text string) bool {
	for _, rule := range s.gibberishRules {
		if rule(text) {
			return true
		}
	}
	return false
}

func (s *Sanitizer) dropLine(line string) bool {
	for _, filter := range s.lineFilters {
		if filter(line) {
			return true
		}
	}
	return false
}

func looksLikeCode(line string) bool {
	for _, kw := range []string{"const ", "let ", "var ", "function", "class "} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return strings.HasPrefix(line, "{") || strings.HasPrefix(line, "(")
}

func isCommentSyntax(line string) bool {
	return strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, "/*") ||
		strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "<!--")
}

func isJSONShaped(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")
}
