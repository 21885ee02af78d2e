package entity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowedRe = regexp.MustCompile(`[^a-z0-9-]+`)
	slugMultiHyphen  = regexp.MustCompile(`-+`)
)

// Slugify derives a url-safe slug from a free-form name: it strips
// accents via Unicode normalisation, lowercases, replaces whitespace
// and underscores with hyphens, and drops anything left that isn't
// alphanumeric or a hyphen. Used by the import pipeline to compute a
// slug when an entity file omits one.
func Slugify(name string) string {
	text := strings.ToLower(name)

	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	text, _, _ = transform.String(stripAccents, text)

	text = strings.ReplaceAll(text, " ", "-")
	text = strings.ReplaceAll(text, "_", "-")
	text = slugDisallowedRe.ReplaceAllString(text, "")
	text = slugMultiHyphen.ReplaceAllString(text, "-")

	return strings.Trim(text, "-")
}
