package store

import "github.com/menucost/engine/internal/entity"

// IngredientListFilter narrows a supplier/ingredient listing query.
type IngredientListFilter struct {
	Search       string
	SupplierSlug string
	Category     string
}

// RecipeListFilter narrows a recipe listing query.
type RecipeListFilter struct {
	Search   string
	Category string
	Stage    entity.RecipeStage
	Class    entity.RecipeClass
}
