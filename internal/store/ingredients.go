package store

import (
	"context"
	"strings"
	"time"

	"github.com/menucost/engine/internal/entity"
)

// GetIngredient fetches a single ingredient by slug.
func (s *Store) GetIngredient(ctx context.Context, slug string) (entity.Ingredient, error) {
	var ing entity.Ingredient
	err := s.pool.QueryRow(ctx, `
		SELECT slug, name, category, purchase_unit, purchase_cost, includes_vat, conversion_rule,
			COALESCE(supplier_slug, ''), notes, last_purchased, created_at, updated_at
		FROM ingredients
		WHERE slug = $1
	`, slug).Scan(
		&ing.Slug, &ing.Name, &ing.Category, &ing.PurchaseUnit, &ing.PurchaseCost, &ing.IncludesVAT,
		&ing.ConversionRule, &ing.SupplierSlug, &ing.Notes, &ing.LastPurchased, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return entity.Ingredient{}, translateError(err)
	}
	return ing, nil
}

// UpsertIngredient creates or replaces an ingredient row keyed by slug.
// SupplierSlug immutability is the service layer's responsibility; the
// store writes whatever it is given.
func (s *Store) UpsertIngredient(ctx context.Context, ing entity.Ingredient) error {
	now := time.Now().UTC()
	supplierSlug := nullableString(ing.SupplierSlug)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingredients (slug, name, category, purchase_unit, purchase_cost, includes_vat, conversion_rule, supplier_slug, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			purchase_unit = EXCLUDED.purchase_unit,
			purchase_cost = EXCLUDED.purchase_cost,
			includes_vat = EXCLUDED.includes_vat,
			conversion_rule = EXCLUDED.conversion_rule,
			supplier_slug = EXCLUDED.supplier_slug,
			notes = EXCLUDED.notes,
			updated_at = $10
	`,
		ing.Slug, strings.TrimSpace(ing.Name), ing.Category, ing.PurchaseUnit, ing.PurchaseCost,
		ing.IncludesVAT, ing.ConversionRule, supplierSlug, ing.Notes, now,
	)
	return translateError(err)
}

// DeleteIngredient removes an ingredient row.
func (s *Store) DeleteIngredient(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM ingredients WHERE slug = $1`, slug)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IngredientIsReferencedByRecipeLine reports whether any recipe line
// still consumes ingredientSlug.
func (s *Store) IngredientIsReferencedByRecipeLine(ctx context.Context, ingredientSlug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM recipe_lines WHERE ingredient_slug = $1)
	`, ingredientSlug).Scan(&exists)
	if err != nil {
		return false, translateError(err)
	}
	return exists, nil
}

// ListIngredients returns ingredients matching filter, ordered by name.
func (s *Store) ListIngredients(ctx context.Context, filter IngredientListFilter) ([]entity.Ingredient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slug, name, category, purchase_unit, purchase_cost, includes_vat, conversion_rule,
			COALESCE(supplier_slug, ''), notes, last_purchased, created_at, updated_at
		FROM ingredients
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
			AND ($2 = '' OR supplier_slug = $2)
			AND ($3 = '' OR category = $3)
		ORDER BY name ASC
	`, strings.TrimSpace(filter.Search), filter.SupplierSlug, filter.Category)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []entity.Ingredient
	for rows.Next() {
		var ing entity.Ingredient
		if err := rows.Scan(&ing.Slug, &ing.Name, &ing.Category, &ing.PurchaseUnit, &ing.PurchaseCost,
			&ing.IncludesVAT, &ing.ConversionRule, &ing.SupplierSlug, &ing.Notes, &ing.LastPurchased,
			&ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return nil, translateError(err)
		}
		out = append(out, ing)
	}
	return out, translateError(rows.Err())
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
