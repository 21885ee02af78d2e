package costing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menucost/engine/internal/entity"
)

type stubRecipes map[string]entity.Recipe
type stubIngredients map[string]entity.Ingredient

func (s stubRecipes) FindRecipe(_ context.Context, slug string) (entity.Recipe, error) {
	r, ok := s[slug]
	if !ok {
		return entity.Recipe{}, assertNotFound(slug)
	}
	return r, nil
}

func (s stubIngredients) FindIngredient(_ context.Context, slug string) (entity.Ingredient, error) {
	i, ok := s[slug]
	if !ok {
		return entity.Ingredient{}, assertNotFound(slug)
	}
	return i, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return string(e) + " not found" }

func assertNotFound(slug string) error { return notFoundErr(slug) }

func newEngine(recipes stubRecipes, ingredients stubIngredients, vat decimal.Decimal) *Engine {
	return New(recipes, ingredients, vat, zerolog.Nop())
}

func TestCost_PlainIngredient(t *testing.T) {
	ingredients := stubIngredients{
		"ham": {Slug: "ham", Name: "Ham", PurchaseUnit: "1000g", PurchaseCost: 599},
	}
	recipes := stubRecipes{
		"sandwich": {Slug: "sandwich", Name: "Sandwich", SellPrice: 500, TargetMargin: 50,
			Lines: []entity.RecipeLine{{RecipeSlug: "sandwich", IngredientSlug: "ham", Unit: "25g"}}},
	}
	e := newEngine(recipes, ingredients, decimal.Zero)

	result, err := e.Cost(context.Background(), "sandwich")
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.TotalCost)
}

func TestCost_VatInclusiveStrip(t *testing.T) {
	ingredients := stubIngredients{
		"oil": {Slug: "oil", Name: "Oil", PurchaseUnit: "1000ml", PurchaseCost: 1200, IncludesVAT: true},
	}
	recipes := stubRecipes{
		"fries": {Slug: "fries", Name: "Fries", SellPrice: 500, TargetMargin: 50,
			Lines: []entity.RecipeLine{{RecipeSlug: "fries", IngredientSlug: "oil", Unit: "100ml"}}},
	}
	e := newEngine(recipes, ingredients, decimal.NewFromFloat(0.2))

	result, err := e.Cost(context.Background(), "fries")
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.TotalCost)
}

func TestCost_CustomConversionRule(t *testing.T) {
	ingredients := stubIngredients{
		"bread": {Slug: "bread", Name: "Bread", PurchaseUnit: "1loaf", PurchaseCost: 192, ConversionRule: "1 loaf = 16 slices"},
	}
	recipes := stubRecipes{
		"toast": {Slug: "toast", Name: "Toast", SellPrice: 500, TargetMargin: 50,
			Lines: []entity.RecipeLine{{RecipeSlug: "toast", IngredientSlug: "bread", Unit: "2slices"}}},
	}
	e := newEngine(recipes, ingredients, decimal.Zero)

	result, err := e.Cost(context.Background(), "toast")
	require.NoError(t, err)
	assert.Equal(t, int64(24), result.TotalCost)
}

func TestCost_SubRecipeYieldScaling(t *testing.T) {
	ingredients := stubIngredients{
		"tomato": {Slug: "tomato", Name: "Tomato", PurchaseUnit: "1g", PurchaseCost: 1},
	}
	recipes := stubRecipes{
		"sauce": {Slug: "sauce", Name: "Sauce", Class: entity.ClassSubRecipe, YieldAmount: "500", YieldUnit: "ml", SellPrice: 1,
			Lines: []entity.RecipeLine{{RecipeSlug: "sauce", IngredientSlug: "tomato", Unit: "300g"}}},
		"pasta": {Slug: "pasta", Name: "Pasta", SellPrice: 500, TargetMargin: 50,
			Lines: []entity.RecipeLine{{RecipeSlug: "pasta", SubRecipeSlug: "sauce", Unit: "50ml"}}},
	}
	e := newEngine(recipes, ingredients, decimal.Zero)

	sauceResult, err := e.Cost(context.Background(), "sauce")
	require.NoError(t, err)
	require.Equal(t, int64(300), sauceResult.TotalCost)

	result, err := e.Cost(context.Background(), "pasta")
	require.NoError(t, err)
	assert.Equal(t, int64(30), result.TotalCost)
}

func TestMargin_MeetsTarget(t *testing.T) {
	recipe := entity.Recipe{Slug: "pizza", Name: "Pizza", SellPrice: 400, TargetMargin: 65}
	result := CostResult{Recipe: recipe, TotalCost: 100}
	e := newEngine(stubRecipes{}, stubIngredients{}, decimal.Zero)

	margin := e.Margin(result)
	assert.Equal(t, int64(300), margin.Profit)
	assert.True(t, decimal.NewFromInt(75).Equal(margin.ActualMargin))
	assert.True(t, margin.MeetsTarget)
}
