package modkey

import (
	"net/url"
	"strings"
)

// DefaultTitle is used when a module title is empty after trimming.
const DefaultTitle = "general"

// Normalize derives the canonical module key from a human-readable title.
// Titles differing only by case or surrounding/inner whitespace normalize to
// the same key. The result is safe for use as a document key and a URL path
// segment.
func Normalize(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		t = DefaultTitle
	}
	t = strings.ToLower(t)
	t = strings.Join(strings.Fields(t), "_")
	return url.QueryEscape(t)
}
