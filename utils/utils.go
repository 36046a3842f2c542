package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	// Only complete tags; a lone '<' is caption text.
	escapedTag = regexp.MustCompile(`<[^>]*>`)
)

// CleanCaptionText turns a raw caption cue into plain text. Markup such as
// <font> or <i> is dropped whether it arrives as tags or as escaped tags,
// entities are decoded once, surrounding whitespace is trimmed.
func CleanCaptionText(raw string) string {
	// Sanitize before unescaping so "&lt;" stays text to the policy.
	text := strictPolicy.Sanitize(raw)
	text = html.UnescapeString(text)
	text = escapedTag.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
