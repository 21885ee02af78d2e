package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/menucost/engine/internal/entity"
)

// recipeLineRow mirrors the json_build_object projection used by
// GetRecipe below, letting a single round trip carry a
// recipe and its full line set.
type recipeLineRow struct {
	IngredientSlug string `json:"ingredient_slug"`
	SubRecipeSlug  string `json:"sub_recipe_slug"`
	Unit           string `json:"unit"`
	Notes          string `json:"notes"`
}

// GetRecipe fetches a recipe and its own lines (not its parent's) in a
// single round trip via a correlated json_agg subquery.
func (s *Store) GetRecipe(ctx context.Context, slug string) (entity.Recipe, error) {
	var r entity.Recipe
	var linesJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT r.slug, r.name, r.stage, r.class, r.category, r.sell_price, r.includes_vat,
			r.target_margin, r.yield_amount, r.yield_unit, COALESCE(r.parent_slug, ''), r.image_key,
			r.created_at, r.updated_at,
			COALESCE((
				SELECT json_agg(json_build_object(
					'ingredient_slug', COALESCE(l.ingredient_slug, ''),
					'sub_recipe_slug', COALESCE(l.sub_recipe_slug, ''),
					'unit', l.unit,
					'notes', l.notes
				) ORDER BY l.position)
				FROM recipe_lines l WHERE l.recipe_slug = r.slug
			), '[]') AS lines
		FROM recipes r
		WHERE r.slug = $1
	`, slug).Scan(
		&r.Slug, &r.Name, &r.Stage, &r.Class, &r.Category, &r.SellPrice, &r.IncludesVAT,
		&r.TargetMargin, &r.YieldAmount, &r.YieldUnit, &r.ParentSlug, &r.ImageKey, &r.CreatedAt, &r.UpdatedAt,
		&linesJSON,
	)
	if err != nil {
		return entity.Recipe{}, translateError(err)
	}

	var rows []recipeLineRow
	if err := json.Unmarshal(linesJSON, &rows); err != nil {
		return entity.Recipe{}, err
	}
	r.Lines = make([]entity.RecipeLine, 0, len(rows))
	for _, row := range rows {
		r.Lines = append(r.Lines, entity.RecipeLine{
			RecipeSlug:     r.Slug,
			IngredientSlug: row.IngredientSlug,
			SubRecipeSlug:  row.SubRecipeSlug,
			Unit:           row.Unit,
			Notes:          row.Notes,
		})
	}
	return r, nil
}

// UpsertRecipe replaces a recipe row and its full line set atomically,
// per the concurrency model's "a recipe's lines match its last
// successful commit" invariant.
func (s *Store) UpsertRecipe(ctx context.Context, r entity.Recipe) error {
	now := time.Now().UTC()
	parentSlug := nullableString(r.ParentSlug)

	return s.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO recipes (slug, name, stage, class, category, sell_price, includes_vat, target_margin, yield_amount, yield_unit, parent_slug, image_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				stage = EXCLUDED.stage,
				class = EXCLUDED.class,
				category = EXCLUDED.category,
				sell_price = EXCLUDED.sell_price,
				includes_vat = EXCLUDED.includes_vat,
				target_margin = EXCLUDED.target_margin,
				yield_amount = EXCLUDED.yield_amount,
				yield_unit = EXCLUDED.yield_unit,
				parent_slug = EXCLUDED.parent_slug,
				image_key = COALESCE(NULLIF(EXCLUDED.image_key, ''), recipes.image_key),
				updated_at = $13
		`,
			r.Slug, strings.TrimSpace(r.Name), string(r.Stage), string(r.Class), r.Category,
			r.SellPrice, r.IncludesVAT, r.TargetMargin, r.YieldAmount, r.YieldUnit, parentSlug, r.ImageKey, now,
		); err != nil {
			return translateError(err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM recipe_lines WHERE recipe_slug = $1`, r.Slug); err != nil {
			return translateError(err)
		}

		for i, line := range r.Lines {
			if _, err := tx.Exec(ctx, `
				INSERT INTO recipe_lines (recipe_slug, position, ingredient_slug, sub_recipe_slug, unit, notes)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, r.Slug, i, nullableString(line.IngredientSlug), nullableString(line.SubRecipeSlug), line.Unit, line.Notes); err != nil {
				return translateError(err)
			}
		}

		return nil
	})
}

// DeleteRecipe removes a recipe and its lines. The caller is
// responsible for checking RecipeIsReferencedAsSubRecipe first.
func (s *Store) DeleteRecipe(ctx context.Context, slug string) error {
	return s.ExecTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_lines WHERE recipe_slug = $1`, slug); err != nil {
			return translateError(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM recipes WHERE slug = $1`, slug)
		if err != nil {
			return translateError(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RecipeIsReferencedAsSubRecipe reports whether any other recipe line
// consumes recipeSlug as a sub-recipe.
func (s *Store) RecipeIsReferencedAsSubRecipe(ctx context.Context, recipeSlug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM recipe_lines WHERE sub_recipe_slug = $1)
	`, recipeSlug).Scan(&exists)
	if err != nil {
		return false, translateError(err)
	}
	return exists, nil
}

// RecipesByParent returns every recipe whose parent_slug is parentSlug,
// used to cascade re-costing when a base template changes.
func (s *Store) RecipesByParent(ctx context.Context, parentSlug string) ([]entity.Recipe, error) {
	rows, err := s.pool.Query(ctx, `SELECT slug FROM recipes WHERE parent_slug = $1`, parentSlug)
	if err != nil {
		return nil, translateError(err)
	}
	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			rows.Close()
			return nil, translateError(err)
		}
		slugs = append(slugs, slug)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	out := make([]entity.Recipe, 0, len(slugs))
	for _, slug := range slugs {
		r, err := s.GetRecipe(ctx, slug)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ListRecipes returns recipes matching filter, ordered by name. Lines
// are not populated; callers needing lines use GetRecipe per slug.
func (s *Store) ListRecipes(ctx context.Context, filter RecipeListFilter) ([]entity.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slug, name, stage, class, category, sell_price, includes_vat, target_margin,
			yield_amount, yield_unit, COALESCE(parent_slug, ''), image_key, created_at, updated_at
		FROM recipes
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
			AND ($2 = '' OR category = $2)
			AND ($3 = '' OR stage = $3)
			AND ($4 = '' OR class = $4)
		ORDER BY name ASC
	`, strings.TrimSpace(filter.Search), filter.Category, string(filter.Stage), string(filter.Class))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []entity.Recipe
	for rows.Next() {
		var r entity.Recipe
		var stage, class string
		if err := rows.Scan(&r.Slug, &r.Name, &stage, &class, &r.Category, &r.SellPrice, &r.IncludesVAT,
			&r.TargetMargin, &r.YieldAmount, &r.YieldUnit, &r.ParentSlug, &r.ImageKey, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, translateError(err)
		}
		r.Stage = entity.RecipeStage(stage)
		r.Class = entity.RecipeClass(class)
		out = append(out, r)
	}
	return out, translateError(rows.Err())
}
