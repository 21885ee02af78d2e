// Package costing implements the recursive recipe cost evaluator and
// the margin derivation built on top of it: ex-VAT sell price, VAT
// amount, profit, and actual margin against the target, over a
// recursive sub-recipe tree, using integer minor units and shopspring/decimal for every
// intermediate ratio so no float equality check ever has to happen.
package costing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/menucost/engine/internal/entity"
	"github.com/menucost/engine/internal/importerr"
	"github.com/menucost/engine/internal/unit"
)

// MaxDepth bounds sub-recipe recursion, per spec §4.2.
const MaxDepth = 10

// RecipeLookup resolves a recipe slug to its full record, lines
// included. Implemented by internal/service's recipe service.
type RecipeLookup interface {
	FindRecipe(ctx context.Context, slug string) (entity.Recipe, error)
}

// IngredientLookup resolves an ingredient slug to its full record.
// Implemented by internal/service's ingredient service.
type IngredientLookup interface {
	FindIngredient(ctx context.Context, slug string) (entity.Ingredient, error)
}

// CostTreeNode is one line of a recipe's cost breakdown, recursively
// expanded for sub-recipe lines.
type CostTreeNode struct {
	Kind     entity.Kind
	Name     string
	Unit     string
	Amount   decimal.Decimal
	Cost     int64
	Children []CostTreeNode
}

// CostResult is the output of Engine.Cost.
type CostResult struct {
	Recipe    entity.Recipe
	Tree      []CostTreeNode
	TotalCost int64
}

// MarginResult is the output of Engine.Margin, all monetary fields in
// minor units and percentages carrying two decimal places.
type MarginResult struct {
	Cost           int64
	SellPriceExVat int64
	CustomerPrice  int64
	VatAmount      int64
	Profit         int64
	ActualMargin   decimal.Decimal
	TargetMargin   decimal.Decimal
	MarginDelta    decimal.Decimal
	MeetsTarget    bool
	VatApplicable  bool
}

// Engine evaluates recipe cost and margin against the recipe and
// ingredient services, and the configured VAT rate.
type Engine struct {
	Recipes     RecipeLookup
	Ingredients IngredientLookup
	VATRate     decimal.Decimal
	Log         zerolog.Logger
}

// New constructs an Engine. vatRate is a fraction, e.g. 0.20 for 20%.
func New(recipes RecipeLookup, ingredients IngredientLookup, vatRate decimal.Decimal, log zerolog.Logger) *Engine {
	return &Engine{Recipes: recipes, Ingredients: ingredients, VATRate: vatRate, Log: log.With().Str("component", "costing").Logger()}
}

// Cost recursively evaluates slug's fully-loaded cost.
func (e *Engine) Cost(ctx context.Context, slug string) (CostResult, error) {
	return e.cost(ctx, slug, 0)
}

func (e *Engine) cost(ctx context.Context, slug string, depth int) (CostResult, error) {
	if depth > MaxDepth {
		return CostResult{}, &importerr.DepthExceededError{RecipeSlug: slug, MaxDepth: MaxDepth}
	}

	recipe, err := e.Recipes.FindRecipe(ctx, slug)
	if err != nil {
		return CostResult{}, fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	var tree []CostTreeNode
	var total int64

	for _, line := range recipe.Lines {
		if line.IsIngredientLine() {
			node, cost, ok := e.costIngredientLine(ctx, line)
			if !ok {
				continue
			}
			total += cost
			tree = append(tree, node)
			continue
		}

		child, err := e.cost(ctx, line.SubRecipeSlug, depth+1)
		if err != nil {
			return CostResult{}, err
		}
		node, cost := e.scaleSubRecipeLine(line, child)
		total += cost
		tree = append(tree, node)
	}

	return CostResult{Recipe: recipe, Tree: tree, TotalCost: total}, nil
}

// costIngredientLine costs one ingredient line. ok is false when the
// ingredient cannot be found, either quantity fails to parse, the
// conversion rule is unparseable, or no conversion path exists; the
// line is then skipped with a logged warning rather than failing the
// whole recipe.
func (e *Engine) costIngredientLine(ctx context.Context, line entity.RecipeLine) (CostTreeNode, int64, bool) {
	ing, err := e.Ingredients.FindIngredient(ctx, line.IngredientSlug)
	if err != nil {
		e.Log.Warn().Err(err).Str("ingredient", line.IngredientSlug).Msg("ingredient not found, skipping line")
		return CostTreeNode{}, 0, false
	}

	lineQty, err := unit.Parse(line.Unit)
	if err != nil || lineQty == unit.Unspecified {
		e.Log.Warn().Err(err).Str("ingredient", ing.Slug).Msg("line quantity unparseable, skipping line")
		return CostTreeNode{}, 0, false
	}
	purchaseQty, err := unit.Parse(ing.PurchaseUnit)
	if err != nil || purchaseQty == unit.Unspecified {
		e.Log.Warn().Err(err).Str("ingredient", ing.Slug).Msg("purchase quantity unparseable, skipping line")
		return CostTreeNode{}, 0, false
	}

	rule, err := unit.ParseRule(ing.ConversionRule)
	if err != nil {
		e.Log.Warn().Err(err).Str("ingredient", ing.Slug).Msg("conversion rule unparseable, skipping line")
		return CostTreeNode{}, 0, false
	}

	converted, err := unit.Convert(lineQty.Amount, lineQty.Unit, purchaseQty.Unit, rule)
	if err != nil {
		e.Log.Warn().Err(err).Str("ingredient", ing.Slug).Msg("no conversion path, skipping line")
		return CostTreeNode{}, 0, false
	}

	purchaseCost := decimal.NewFromInt(ing.PurchaseCost)
	purchaseExVat := purchaseCost
	if ing.IncludesVAT {
		purchaseExVat = purchaseCost.Div(decimal.NewFromInt(1).Add(e.VATRate))
	}

	ratio := converted.Div(purchaseQty.Amount)
	lineCost := roundUpMinorUnit(ratio.Mul(purchaseExVat))

	return CostTreeNode{
		Kind:   entity.KindIngredient,
		Name:   ing.Name,
		Unit:   line.Unit,
		Amount: lineQty.Amount,
		Cost:   lineCost,
	}, lineCost, true
}

// scaleSubRecipeLine pro-rates a sub-recipe's already-computed cost
// against the parent line's required quantity and the child's declared
// yield, per spec §4.2's yield-scaling algorithm.
func (e *Engine) scaleSubRecipeLine(line entity.RecipeLine, child CostResult) (CostTreeNode, int64) {
	node := CostTreeNode{
		Kind:     entity.KindRecipe,
		Name:     child.Recipe.Name,
		Unit:     line.Unit,
		Children: child.Tree,
	}

	rQty, err := unit.Parse(line.Unit)
	if err != nil || rQty == unit.Unspecified {
		e.Log.Warn().Str("recipe", child.Recipe.Slug).Msg("sub-recipe line quantity unparseable, using child cost as-is")
		node.Cost = child.TotalCost
		return node, child.TotalCost
	}
	node.Amount = rQty.Amount

	yQty, err := unit.Parse(child.Recipe.YieldAmount + " " + child.Recipe.YieldUnit)
	if err != nil || yQty == unit.Unspecified || yQty.Amount.IsZero() {
		node.Cost = child.TotalCost
		return node, child.TotalCost
	}

	childTotal := decimal.NewFromInt(child.TotalCost)

	if converted, convErr := unit.Convert(rQty.Amount, rQty.Unit, yQty.Unit, unit.Rule{}); convErr == nil {
		scaled := roundUpMinorUnit(childTotal.Mul(converted).Div(yQty.Amount))
		node.Cost = scaled
		return node, scaled
	}

	if rQty.Unit == yQty.Unit {
		scaled := roundUpMinorUnit(childTotal.Mul(rQty.Amount).Div(yQty.Amount))
		node.Cost = scaled
		return node, scaled
	}

	e.Log.Warn().Str("recipe", child.Recipe.Slug).Str("lineUnit", rQty.Unit).Str("yieldUnit", yQty.Unit).
		Msg("cannot convert sub-recipe yield unit, falling back to 1:1")
	node.Cost = child.TotalCost
	return node, child.TotalCost
}

// Margin derives profit and margin-versus-target figures from a cost
// result.
func (e *Engine) Margin(result CostResult) MarginResult {
	recipe := result.Recipe
	sellPrice := decimal.NewFromInt(recipe.SellPrice)

	sellEx := sellPrice
	vatAmt := decimal.Zero
	if recipe.IncludesVAT {
		sellEx = sellPrice.Div(decimal.NewFromInt(1).Add(e.VATRate))
		vatAmt = sellPrice.Sub(sellEx)
	}

	totalCost := decimal.NewFromInt(result.TotalCost)
	profit := sellEx.Sub(totalCost)

	actualMargin := decimal.Zero
	if !sellEx.IsZero() {
		actualMargin = roundHalfUp2(profit.Div(sellEx).Mul(decimal.NewFromInt(100)))
	}
	targetMargin := decimal.NewFromInt(int64(recipe.TargetMargin))

	return MarginResult{
		Cost:           result.TotalCost,
		SellPriceExVat: roundUpMinorUnit(sellEx),
		CustomerPrice:  recipe.SellPrice,
		VatAmount:      roundUpMinorUnit(vatAmt),
		Profit:         roundUpMinorUnit(profit),
		ActualMargin:   actualMargin,
		TargetMargin:   targetMargin,
		MarginDelta:    actualMargin.Sub(targetMargin),
		MeetsTarget:    actualMargin.GreaterThanOrEqual(targetMargin),
		VatApplicable:  recipe.IncludesVAT,
	}
}

// roundUpMinorUnit rounds a decimal monetary amount up to the next
// whole minor unit, per the "conservative costing" glossary entry.
func roundUpMinorUnit(d decimal.Decimal) int64 {
	return d.Ceil().IntPart()
}

// roundHalfUp2 rounds a percentage to two decimal places, half away
// from zero.
func roundHalfUp2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
