package validation

import (
	"strings"
	"unicode"

	"github.com/nijaru/yt-transcript/errors"
)

type pattern struct {
	marker    string
	prefix    string
	delimiter string
}

// Checked in order; the first marker contained in the URL wins.
var patterns = []pattern{
	{marker: "watch?v=", prefix: "v=", delimiter: "&"},
	{marker: "youtu.be/", prefix: "youtu.be/", delimiter: "?"},
	{marker: "/embed/", prefix: "/embed/", delimiter: "?"},
}

// ExtractVideoID pulls the video ID out of a watch, youtu.be or embed URL.
func ExtractVideoID(rawURL string) (string, error) {
	const op = "validation.ExtractVideoID"

	for _, p := range patterns {
		if !strings.Contains(rawURL, p.marker) {
			continue
		}

		_, rest, found := strings.Cut(rawURL, p.prefix)
		if !found {
			return "", errors.MalformedExtraction(op, rawURL, "")
		}
		id, _, _ := strings.Cut(rest, p.delimiter)

		if !IsValidVideoID(id) {
			return "", errors.MalformedExtraction(op, rawURL, id)
		}
		return id, nil
	}

	return "", errors.NoPatternMatched(op, rawURL)
}

// IsValidVideoID reports whether id is non-empty and made only of
// letters, digits, '-' and '_'.
func IsValidVideoID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}
