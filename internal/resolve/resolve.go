// Package resolve normalises the three reference syntaxes a declarative
// entity file may use to point at another entity — absolute (@/…),
// relative (./…, ../…), and symbolic (slug:…) — into either a canonical
// absolute path or a bare slug.
//
// This is new territory with no analogue elsewhere in the module, kept
// to the same small-file, single-purpose shape as the rest of
// internal/.
package resolve

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/menucost/engine/internal/importerr"
)

// Kind distinguishes a resolved reference's origin.
type Kind int

const (
	// KindPath means Value is a canonical absolute filesystem path.
	KindPath Kind = iota
	// KindSlug means Value is a bare slug with no associated file.
	KindSlug
)

// Reference is a normalised pointer to another entity.
type Reference struct {
	Kind  Kind
	Value string
}

var referenceRe = regexp.MustCompile(`^(@/|\.\.?/|slug:).+`)

// LooksLikeReference reports whether raw matches the closed reference
// grammar (@/…, ./…, ../…, slug:…).
func LooksLikeReference(raw string) bool {
	return referenceRe.MatchString(raw)
}

// Resolve normalises raw against projectRoot (for @/ references) and
// sourceDir (the directory containing the file the reference appears
// in, for ./ and ../ references). ext is the file extension in effect
// for the current import batch (".yaml" or ".json"); path references
// must end in it, slug references must not.
func Resolve(raw, projectRoot, sourceDir, ext string) (Reference, error) {
	switch {
	case strings.HasPrefix(raw, "@/"):
		rel := strings.TrimPrefix(raw, "@/")
		if !strings.HasSuffix(rel, ext) {
			return Reference{}, importerr.Malformed("absolute reference %q must end in %q", raw, ext)
		}
		return Reference{Kind: KindPath, Value: filepath.Clean(filepath.Join(projectRoot, rel))}, nil

	case strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		if !strings.HasSuffix(raw, ext) {
			return Reference{}, importerr.Malformed("relative reference %q must end in %q", raw, ext)
		}
		return Reference{Kind: KindPath, Value: filepath.Clean(filepath.Join(sourceDir, raw))}, nil

	case strings.HasPrefix(raw, "slug:"):
		slug := strings.TrimPrefix(raw, "slug:")
		if slug == "" {
			return Reference{}, importerr.Malformed("symbolic reference %q has an empty slug", raw)
		}
		if strings.HasSuffix(slug, ext) {
			return Reference{}, importerr.Malformed("symbolic reference %q must not carry a file extension", raw)
		}
		return Reference{Kind: KindSlug, Value: slug}, nil

	default:
		return Reference{}, importerr.Malformed("%q does not match any recognised reference syntax", raw)
	}
}
