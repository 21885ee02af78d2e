package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupplier_Validate(t *testing.T) {
	assert.NoError(t, Supplier{Slug: "acme", Name: "Acme Foods"}.Validate())
	assert.Error(t, Supplier{Name: "Acme Foods"}.Validate())
	assert.Error(t, Supplier{Slug: "acme"}.Validate())
}

func TestIngredient_Validate(t *testing.T) {
	valid := Ingredient{Slug: "flour", Name: "Flour", PurchaseUnit: "1kg", PurchaseCost: 150}
	assert.NoError(t, valid.Validate())

	negative := valid
	negative.PurchaseCost = -1
	assert.Error(t, negative.Validate())

	noUnit := valid
	noUnit.PurchaseUnit = ""
	assert.Error(t, noUnit.Validate())
}

func TestRecipe_Validate(t *testing.T) {
	menuItem := Recipe{Slug: "pizza", Name: "Pizza", SellPrice: 800, TargetMargin: 65}
	assert.NoError(t, menuItem.Validate())

	noSellOrParent := Recipe{Slug: "pizza", Name: "Pizza", TargetMargin: 65}
	assert.Error(t, noSellOrParent.Validate())

	badMargin := menuItem
	badMargin.TargetMargin = 150
	assert.Error(t, badMargin.Validate())

	subRecipeMissingYield := Recipe{Slug: "sauce", Name: "Sauce", Class: ClassSubRecipe, SellPrice: 1}
	assert.Error(t, subRecipeMissingYield.Validate())

	subRecipeWithYield := subRecipeMissingYield
	subRecipeWithYield.YieldAmount = "500"
	subRecipeWithYield.YieldUnit = "ml"
	assert.NoError(t, subRecipeWithYield.Validate())
}

func TestRecipeLine_Validate(t *testing.T) {
	valid := RecipeLine{RecipeSlug: "pizza", IngredientSlug: "flour", Unit: "200g"}
	assert.NoError(t, valid.Validate())

	both := RecipeLine{RecipeSlug: "pizza", IngredientSlug: "flour", SubRecipeSlug: "sauce", Unit: "1x"}
	assert.Error(t, both.Validate())

	neither := RecipeLine{RecipeSlug: "pizza", Unit: "1x"}
	assert.Error(t, neither.Validate())
}
