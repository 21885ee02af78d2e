package entity

import (
	"strings"

	"github.com/menucost/engine/internal/importerr"
)

// Validate checks the structural invariants of §3 that do not require a
// store round-trip: required fields, percentage and monetary bounds,
// and well-formed enums. Referential invariants (supplier exists, no
// duplicate slug) are the service layer's job.
func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Slug) == "" {
		return importerr.Invariant("supplier slug is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return importerr.Invariant("supplier %q: name is required", s.Slug)
	}
	return nil
}

// Validate checks Ingredient's own invariants; PurchaseCost is verified
// non-negative here, supplier existence is not.
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Slug) == "" {
		return importerr.Invariant("ingredient slug is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return importerr.Invariant("ingredient %q: name is required", i.Slug)
	}
	if strings.TrimSpace(i.PurchaseUnit) == "" {
		return importerr.Invariant("ingredient %q: purchase unit is required", i.Slug)
	}
	if i.PurchaseCost < 0 {
		return importerr.Invariant("ingredient %q: purchaseCost must be >= 0, got %d", i.Slug, i.PurchaseCost)
	}
	return nil
}

// Validate checks Recipe's own invariants: stage/class enums, that a
// sellPrice or a parent is present (at least one; a recipe with both
// passes, and whether the parent provides a price is not checked),
// targetMargin bounds, and the yield requirement for entities usable
// as sub-recipes.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Slug) == "" {
		return importerr.Invariant("recipe slug is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return importerr.Invariant("recipe %q: name is required", r.Slug)
	}
	switch r.Stage {
	case StageDevelopment, StageActive, StageDiscontinued, "":
	default:
		return importerr.Invariant("recipe %q: unknown stage %q", r.Slug, r.Stage)
	}
	switch r.Class {
	case ClassMenuItem, ClassBaseTemplate, ClassSubRecipe, "":
	default:
		return importerr.Invariant("recipe %q: unknown class %q", r.Slug, r.Class)
	}
	if r.TargetMargin < 0 || r.TargetMargin > 100 {
		return importerr.Invariant("recipe %q: targetMargin must be in [0,100], got %d", r.Slug, r.TargetMargin)
	}
	hasSellPrice := r.SellPrice > 0
	hasParent := r.ParentSlug != ""
	if !hasSellPrice && !hasParent {
		return importerr.Invariant("recipe %q: requires either a sellPrice or a parent to inherit from", r.Slug)
	}
	if r.Class == ClassBaseTemplate || r.Class == ClassSubRecipe {
		if r.YieldAmount == "" || r.YieldUnit == "" {
			return importerr.Invariant("recipe %q: yieldAmount and yieldUnit are required for %s", r.Slug, r.Class)
		}
	}
	return nil
}

// Validate checks that exactly one referent is set on the line.
func (l RecipeLine) Validate() error {
	hasIngredient := l.IngredientSlug != ""
	hasSubRecipe := l.SubRecipeSlug != ""
	if hasIngredient == hasSubRecipe {
		return importerr.Invariant("recipe line on %q must reference exactly one of ingredient/subRecipe", l.RecipeSlug)
	}
	if strings.TrimSpace(l.Unit) == "" {
		return importerr.Invariant("recipe line on %q is missing a unit", l.RecipeSlug)
	}
	return nil
}
