package scraper_test

import (
	"strings"
	"testing"

	"hacker-feed/infrastructure/scraper"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsURLsTagsAndNonASCII(t *testing.T) {
	s := scraper.NewSanitizer()

	cleaned := s.Clean("A long enough sentence with a link https://example.com/x and <b>markup</b> and café characters.")

	assert.NotContains(t, cleaned, "http://")
	assert.NotContains(t, cleaned, "https://")
	assert.NotContains(t, cleaned, "<")
	assert.NotContains(t, cleaned, ">")
	for _, r := range cleaned {
		assert.True(t, r >= 0x20 && r <= 0x7E, "non-printable-ASCII rune %q survived", r)
	}
	assert.Contains(t, cleaned, "A long enough sentence")
}

func TestClean_DropsCodeAndCommentLines(t *testing.T) {
	s := scraper.NewSanitizer()

	raw := strings.Join([]string{
		"This paragraph is genuine prose about the article topic.",
		"const tracker = init();",
		"let x = 1;",
		"var y = 2;",
		"function handler() ",
		"class Widget extends Base ",
		"{ \"key\": \"value\" }",
		"( self-invoking )",
		"// a stray comment",
		"short",
		"",
		"Another genuine sentence that should survive the pass.",
	}, "\n")

	cleaned := s.Clean(raw)

	assert.Contains(t, cleaned, "genuine prose")
	assert.Contains(t, cleaned, "survive the pass")
	assert.NotContains(t, cleaned, "const tracker")
	assert.NotContains(t, cleaned, "let x")
	assert.NotContains(t, cleaned, "function handler")
	assert.NotContains(t, cleaned, "class Widget")
	assert.NotContains(t, cleaned, "key")
	assert.NotContains(t, cleaned, "stray comment")
	assert.NotContains(t, cleaned, "short")
}

func TestClean_EmptyInput(t *testing.T) {
	s := scraper.NewSanitizer()
	assert.Equal(t, "", s.Clean(""))
	assert.Equal(t, "", s.Clean("   \n  \n"))
}

func TestTruncate(t *testing.T) {
	s := scraper.NewSanitizer()

	long := strings.Repeat("a", 250)
	truncated := s.Truncate(long, 200)
	assert.Len(t, truncated, 203)
	assert.True(t, strings.HasSuffix(truncated, "..."))

	short := "stays as is"
	assert.Equal(t, short, s.Truncate(short, 200))
	assert.Equal(t, "", s.Truncate("", 200))
}

func TestIsGibberish(t *testing.T) {
	s := scraper.NewSanitizer()

	// A %PDF prefix flags the text regardless of what follows.
	assert.True(t, s.IsGibberish("%PDF-1.4 perfectly readable words afterwards"))
	assert.True(t, s.IsGibberish("%PDF"))

	assert.True(t, s.IsGibberish("body { font-family: Helvetica; }"))
	assert.True(t, s.IsGibberish("svg text { text-anchor: middle; }"))
	assert.True(t, s.IsGibberish(`{"config": {"nested": true}}`))
	assert.True(t, s.IsGibberish("AUI_KEY_ONE something AUI_KEY_TWO"))

	// A single tracking key is tolerated.
	assert.False(t, s.IsGibberish("mentions AUI_KEY_ONE once in prose"))
	assert.False(t, s.IsGibberish("A perfectly ordinary description of an article."))
	assert.False(t, s.IsGibberish(""))
}

func TestIsGibberish_IdempotentOnNegatives(t *testing.T) {
	s := scraper.NewSanitizer()

	text := "A perfectly ordinary description of an article."
	assert.False(t, s.IsGibberish(text))
	// Feeding a negative case back in stays negative.
	assert.False(t, s.IsGibberish(text))
}

func TestSanitizerWithCustomRules(t *testing.T) {
	s := scraper.NewSanitizerWithRules(
		nil,
		[]scraper.GibberishRule{func(text string) bool { return strings.Contains(text, "banned") }},
	)

	assert.True(t, s.IsGibberish("this is banned text"))
	assert.False(t, s.IsGibberish("%PDF default rules are replaced"))
	// No line filters: short lines survive.
	assert.Equal(t, "short", s.Clean("short"))
}
