// Package sanitize cleans user supplied text and rendered HTML with
// bluemonday policies.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text removes every HTML tag and returns plain text. Entities are decoded
// so the result is stored as the reader typed it.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// HTML keeps the markup a blog post may contain and drops scripts, event
// handlers, and unsafe URLs.
func HTML(s string) string {
	return ugc.Sanitize(s)
}

// Excerpt returns the plain text of s cut to at most n runes on a word
// boundary, with an ellipsis when shortened.
func Excerpt(s string, n int) string {
	text := strings.Join(strings.Fields(Text(s)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}
