package importer

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/menucost/engine/internal/entity"
	"github.com/menucost/engine/internal/graph"
	"github.com/menucost/engine/internal/importerr"
)

const (
	objectSupplier   = "supplier"
	objectIngredient = "ingredient"
	objectRecipe     = "recipe"
)

// rawDocument mirrors the declarative file envelope of §6:
// {object: supplier|ingredient|recipe, data: <payload>}.
type rawDocument struct {
	Object string         `yaml:"object" json:"object"`
	Data   map[string]any `yaml:"data" json:"data"`
}

// lineRef is one recipe ingredient-line reference discovered while
// scanning a recipe file, kept with its index so phase 2 can write the
// resolved referent back into the same slot.
type lineRef struct {
	index int
	raw   string
}

// parsedFile is phase 1's output for one input file: the decoded
// payload plus every path- or slug-style reference it carries,
// un-resolved.
type parsedFile struct {
	path   string
	ext    string
	dir    string
	object string
	slug   string
	data   map[string]any

	supplierRef string
	extendsRef  string
	lineRefs    []lineRef
}

func (f *parsedFile) node() graph.Node {
	return graph.Node{Kind: f.object, Slug: f.slug}
}

type fileReference struct {
	raw string
}

func (f *parsedFile) references() []fileReference {
	var out []fileReference
	if f.supplierRef != "" {
		out = append(out, fileReference{raw: f.supplierRef})
	}
	if f.extendsRef != "" {
		out = append(out, fileReference{raw: f.extendsRef})
	}
	for _, lr := range f.lineRefs {
		out = append(out, fileReference{raw: lr.raw})
	}
	return out
}

// decodeFile parses content (YAML or JSON, chosen by path's extension)
// into a parsedFile, validating the declared object and deriving a slug
// when the payload does not supply one explicitly.
func decodeFile(path string, content []byte) (*parsedFile, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var doc rawDocument
	var err error
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &doc)
	case ".json":
		err = json.Unmarshal(content, &doc)
	default:
		return nil, importerr.Malformed("%q has an unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, importerr.Malformed("%q: %s", path, err)
	}

	switch doc.Object {
	case objectSupplier, objectIngredient, objectRecipe:
	default:
		return nil, importerr.Malformed("%q: unknown object %q", path, doc.Object)
	}
	if doc.Data == nil {
		return nil, importerr.Malformed("%q: missing data", path)
	}

	slug := stringField(doc.Data, "slug")
	if slug == "" {
		name := stringField(doc.Data, "name")
		if name == "" {
			return nil, importerr.Malformed("%q: needs an explicit slug or a name to derive one from", path)
		}
		slug = entity.Slugify(name)
	}

	f := &parsedFile{
		path:   path,
		ext:    ext,
		dir:    filepath.Dir(path),
		object: doc.Object,
		slug:   slug,
		data:   doc.Data,
	}

	switch doc.Object {
	case objectIngredient:
		if supplier, ok := doc.Data["supplier"].(map[string]any); ok {
			f.supplierRef = stringField(supplier, "uses")
		}
	case objectRecipe:
		f.extendsRef = stringField(doc.Data, "extends")
		if items, ok := doc.Data["ingredients"].([]any); ok {
			for i, item := range items {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if uses := stringField(m, "uses"); uses != "" {
					f.lineRefs = append(f.lineRefs, lineRef{index: i, raw: uses})
				}
			}
		}
	}

	return f, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
