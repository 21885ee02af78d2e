package entity

// Recipe is either a sellable menu item or an internal sub-recipe/base
// template consumed by other recipes.
//
// ParentSlug is immutable after creation. Recipe.Validate requires at
// least one of SellPrice being set or ParentSlug being present; it does
// not reject a recipe that has both, and does not check that the parent
// provides a price.
type Recipe struct {
	Slug          string      `json:"slug"`
	Name          string      `json:"name"`
	Stage         RecipeStage `json:"stage"`
	Class         RecipeClass `json:"class"`
	Category      string      `json:"category,omitempty"`
	SellPrice     int64       `json:"sell_price"`
	IncludesVAT   bool        `json:"includes_vat"`
	TargetMargin  int         `json:"target_margin"`
	YieldAmount   string      `json:"yield_amount,omitempty"`
	YieldUnit     string      `json:"yield_unit,omitempty"`
	ParentSlug    string      `json:"parent_slug,omitempty"`
	ImageKey      string      `json:"image_key,omitempty"`
	Lines         []RecipeLine `json:"lines,omitempty"`
	Auditable
}

// RecipeLine is one ingredient or sub-recipe consumed by a Recipe.
//
// Exactly one of IngredientSlug or SubRecipeSlug is non-empty.
type RecipeLine struct {
	RecipeSlug     string `json:"recipe_slug"`
	IngredientSlug string `json:"ingredient_slug,omitempty"`
	SubRecipeSlug  string `json:"sub_recipe_slug,omitempty"`
	Unit           string `json:"unit"`
	Notes          string `json:"notes,omitempty"`
}

// IsIngredientLine reports whether the line consumes an ingredient
// rather than a sub-recipe.
func (l RecipeLine) IsIngredientLine() bool {
	return l.IngredientSlug != ""
}

// ReferentSlug returns whichever of IngredientSlug/SubRecipeSlug is set.
func (l RecipeLine) ReferentSlug() string {
	if l.IngredientSlug != "" {
		return l.IngredientSlug
	}
	return l.SubRecipeSlug
}

// ReferentKind returns the Kind of whichever referent is set.
func (l RecipeLine) ReferentKind() Kind {
	if l.IsIngredientLine() {
		return KindIngredient
	}
	return KindRecipe
}
