package importer

import (
	"github.com/menucost/engine/internal/graph"
	"github.com/menucost/engine/internal/resolve"
)

// resolveAll is phase 2: walk the graph in the dependency-first order
// computed from TopoOrder and materialise a resolved payload per file,
// with every uses/extends replaced by a plain slug and every recipe
// line carrying a correctly-typed kind discriminator.
func (p *Pipeline) resolveAll(order []graph.Node) map[string]map[string]any {
	resolved := make(map[string]map[string]any, len(order))
	for _, node := range order {
		doc, ok := p.nodeFiles[node]
		if !ok {
			continue
		}
		resolved[doc.path] = p.resolveDoc(doc)
	}
	return resolved
}

func (p *Pipeline) resolveDoc(doc *parsedFile) map[string]any {
	switch doc.object {
	case objectSupplier:
		return map[string]any{
			"slug":         doc.slug,
			"name":         stringField(doc.data, "name"),
			"contactName":  stringField(doc.data, "contactName"),
			"contactEmail": stringField(doc.data, "contactEmail"),
			"contactPhone": stringField(doc.data, "contactPhone"),
			"notes":        stringField(doc.data, "notes"),
		}
	case objectIngredient:
		return p.resolveIngredient(doc)
	case objectRecipe:
		return p.resolveRecipe(doc)
	default:
		return nil
	}
}

func (p *Pipeline) resolveIngredient(doc *parsedFile) map[string]any {
	purchase, _ := doc.data["purchase"].(map[string]any)
	out := map[string]any{
		"slug":           doc.slug,
		"name":           stringField(doc.data, "name"),
		"category":       stringField(doc.data, "category"),
		"purchaseUnit":   stringField(purchase, "unit"),
		"purchaseCost":   asInt64(purchase["cost"]),
		"includesVat":    asBool(purchase["vat"]),
		"conversionRate": stringField(doc.data, "conversionRate"),
		"notes":          stringField(doc.data, "notes"),
		"supplier":       "",
	}
	if doc.supplierRef != "" {
		out["supplier"] = p.resolveReferentSlug(doc, doc.supplierRef)
	}
	return out
}

func (p *Pipeline) resolveRecipe(doc *parsedFile) map[string]any {
	costing, _ := doc.data["costing"].(map[string]any)
	out := map[string]any{
		"slug":         doc.slug,
		"name":         stringField(doc.data, "name"),
		"stage":        stringField(doc.data, "stage"),
		"class":        stringField(doc.data, "class"),
		"category":     stringField(doc.data, "category"),
		"sellPrice":    asInt64(costing["price"]),
		"includesVat":  asBool(costing["vat"]),
		"targetMargin": asInt(costing["margin"]),
		"yieldAmount":  stringField(doc.data, "yieldAmount"),
		"yieldUnit":    stringField(doc.data, "yieldUnit"),
		"extends":      "",
	}
	if doc.extendsRef != "" {
		out["extends"] = p.resolveReferentSlug(doc, doc.extendsRef)
	}

	items, _ := doc.data["ingredients"].([]any)
	lines := make([]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		with, _ := m["with"].(map[string]any)
		uses := stringField(m, "uses")
		hint := stringField(m, "type")
		kind, referent := p.resolveLineReferent(doc, uses, hint)

		lines = append(lines, map[string]any{
			"kind":     kind,
			"referent": referent,
			"quantity": stringField(with, "unit"),
			"notes":    stringField(with, "notes"),
		})
	}
	out["ingredients"] = lines
	return out
}

// resolveReferentSlug turns a raw @/…, ./…, ../… or slug:… reference
// into a bare slug. Path references resolve through the docs already
// discovered and wired during scan; scan having already validated every
// path edge, a miss here can only mean the reference pointed outside
// the batch in a way scan already recorded as ReferenceUnresolved.
func (p *Pipeline) resolveReferentSlug(doc *parsedFile, raw string) string {
	ref, err := resolve.Resolve(raw, p.opts.ProjectRoot, doc.dir, doc.ext)
	if err != nil {
		return raw
	}
	if ref.Kind == resolve.KindSlug {
		return ref.Value
	}
	if referent, ok := p.docs[ref.Value]; ok {
		return referent.slug
	}
	return raw
}

// resolveLineReferent determines both the resolved referent slug and
// whether it is an ingredient or a sub-recipe. Per §4.4, the actual
// type — known when the referent is a file in this batch's graph —
// always wins over the declared `type` hint; the hint is only
// consulted when the referent is a bare slug: reference with no
// backing file to inspect.
func (p *Pipeline) resolveLineReferent(doc *parsedFile, raw, hint string) (kind, referentSlug string) {
	ref, err := resolve.Resolve(raw, p.opts.ProjectRoot, doc.dir, doc.ext)
	if err != nil {
		return hintedKind(hint), raw
	}

	if ref.Kind == resolve.KindPath {
		if referent, ok := p.docs[ref.Value]; ok {
			if referent.object == objectRecipe {
				return "sub_recipe", referent.slug
			}
			return "ingredient", referent.slug
		}
	}

	return hintedKind(hint), ref.Value
}

func hintedKind(hint string) string {
	if hint == "recipe" || hint == "sub_recipe" {
		return "sub_recipe"
	}
	return "ingredient"
}
