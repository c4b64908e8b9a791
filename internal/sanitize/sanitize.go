// Package sanitize strips markup from free-text fields before they are stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy() //nolint:gochecknoglobals

// Text removes every HTML element from s and returns the trimmed plain text.
func Text(s string) string {
	if s == "" {
		return ""
	}

	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
