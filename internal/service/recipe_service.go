package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/menucost/engine/internal/changeset"
	"github.com/menucost/engine/internal/entity"
	"github.com/menucost/engine/internal/importerr"
)

// RecipeService implements the Recipe entity service: base templates,
// sub-recipes, and menu items, including parent-template line
// inheritance (a menu item extending a base template inherits the
// template's lines as a union, never an override).
//
// Follows the same repo + cache + logger, normalize-then-persist shape
// as the other entity services, with the nested-lines replace lifted
// into an ExecTx-backed recipe+lines replace.
type RecipeService struct {
	repo        RecipeStore
	ingredients IngredientStore
	cache       Invalidator
	files       FileStore
	log         zerolog.Logger
}

func NewRecipeService(repo RecipeStore, ingredients IngredientStore, cache Invalidator, files FileStore, log zerolog.Logger) *RecipeService {
	return &RecipeService{repo: repo, ingredients: ingredients, cache: cache, files: files, log: log.With().Str("component", "recipe_service").Logger()}
}

func (s *RecipeService) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.GetRecipe(ctx, slug)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// FindBySlug returns the recipe as stored, with its own lines only. Use
// FindWithInheritedLines to resolve the parent-template union.
func (s *RecipeService) FindBySlug(ctx context.Context, slug string) (entity.Recipe, error) {
	return s.repo.GetRecipe(ctx, slug)
}

// FindWithInheritedLines returns r with its parent's lines prepended,
// per §4.8: a recipe that extends a base template exposes the
// template's lines plus its own. The union is not a merge by referent —
// duplicate referents from parent and child both appear, since
// overlay/override is explicitly not supported.
func (s *RecipeService) FindWithInheritedLines(ctx context.Context, slug string) (entity.Recipe, error) {
	r, err := s.repo.GetRecipe(ctx, slug)
	if err != nil {
		return entity.Recipe{}, err
	}
	if r.ParentSlug == "" {
		return r, nil
	}
	parent, err := s.repo.GetRecipe(ctx, r.ParentSlug)
	if err != nil {
		return entity.Recipe{}, fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	merged := make([]entity.RecipeLine, 0, len(parent.Lines)+len(r.Lines))
	merged = append(merged, parent.Lines...)
	merged = append(merged, r.Lines...)
	r.Lines = merged
	return r, nil
}

// FindRecipe satisfies costing.RecipeLookup, resolving a slug to its
// full line set including any inherited parent-template lines.
func (s *RecipeService) FindRecipe(ctx context.Context, slug string) (entity.Recipe, error) {
	return s.FindWithInheritedLines(ctx, slug)
}

// Upsert persists r and its lines atomically, enforcing ParentSlug
// immutability once the recipe already exists.
func (s *RecipeService) Upsert(ctx context.Context, r entity.Recipe) error {
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return err
	}
	for i := range r.Lines {
		if err := r.Lines[i].Validate(); err != nil {
			return err
		}
	}

	if r.ParentSlug != "" {
		if _, err := s.repo.GetRecipe(ctx, r.ParentSlug); err != nil {
			if isNotFound(err) {
				return &importerr.MissingDependencyError{Dependent: r.Slug, Referent: r.ParentSlug}
			}
			return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
		}
	}
	for _, line := range r.Lines {
		if err := s.checkReferent(ctx, r.Slug, line); err != nil {
			return err
		}
	}

	existing, err := s.repo.GetRecipe(ctx, r.Slug)
	if err == nil && existing.ParentSlug != "" && existing.ParentSlug != r.ParentSlug {
		return &importerr.ImmutableFieldError{
			Entity: "recipe", Field: "parentSlug",
			Current: existing.ParentSlug, Attempt: r.ParentSlug,
		}
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	if err := s.repo.UpsertRecipe(ctx, r); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("slug", r.Slug).Int("lines", len(r.Lines)).Msg("recipe upserted")
	return nil
}

func (s *RecipeService) checkReferent(ctx context.Context, recipeSlug string, line entity.RecipeLine) error {
	if line.IsIngredientLine() {
		if _, err := s.ingredients.GetIngredient(ctx, line.IngredientSlug); err != nil {
			if isNotFound(err) {
				return &importerr.MissingDependencyError{Dependent: recipeSlug, Referent: line.IngredientSlug}
			}
			return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
		}
		return nil
	}
	if _, err := s.repo.GetRecipe(ctx, line.SubRecipeSlug); err != nil {
		if isNotFound(err) {
			return &importerr.MissingDependencyError{Dependent: recipeSlug, Referent: line.SubRecipeSlug}
		}
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	return nil
}

// Delete removes a recipe, refusing when another recipe still consumes
// it as a sub-recipe.
func (s *RecipeService) Delete(ctx context.Context, slug string) error {
	inUse, err := s.repo.RecipeIsReferencedAsSubRecipe(ctx, slug)
	if err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	if inUse {
		return importerr.Invariant("recipe %q is still referenced as a sub-recipe", slug)
	}

	if err := s.repo.DeleteRecipe(ctx, slug); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	s.invalidate(ctx)
	return nil
}

// Processor is the pipeline-facing hook for recipe entity files.
// resolved's "extends" key, when present, carries the resolved parent
// slug; each entry of "ingredients" has already had its reference
// replaced by the resolved ingredient or sub-recipe slug, tagged by a
// "kind" that phase 2 inferred from the referent's object where the
// referent is a file in the batch, overriding the line's type hint.
// The recipe's own class is taken as declared in the file.
func (s *RecipeService) Processor(ctx context.Context, resolved map[string]any, path string, _ SlugLookup) (Classification, error) {
	slug, _ := resolved["slug"].(string)
	incoming := entity.Recipe{
		Slug:         slug,
		Name:         asString(resolved["name"]),
		Stage:        entity.RecipeStage(asString(resolved["stage"])),
		Class:        entity.RecipeClass(asString(resolved["class"])),
		Category:     asString(resolved["category"]),
		SellPrice:    asInt64(resolved["sellPrice"]),
		IncludesVAT:  asBool(resolved["includesVat"]),
		TargetMargin: asInt(resolved["targetMargin"]),
		YieldAmount:  asString(resolved["yieldAmount"]),
		YieldUnit:    asString(resolved["yieldUnit"]),
		ParentSlug:   asString(resolved["extends"]),
		Lines:        linesFrom(slug, resolved["ingredients"]),
	}

	existing, err := s.repo.GetRecipe(ctx, slug)
	existed := err == nil
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	var existingMap map[string]any
	if existed {
		existingMap = map[string]any{
			"name": existing.Name, "stage": string(existing.Stage), "class": string(existing.Class),
			"category": existing.Category, "sellPrice": existing.SellPrice, "includesVat": existing.IncludesVAT,
			"targetMargin": existing.TargetMargin, "yieldAmount": existing.YieldAmount, "yieldUnit": existing.YieldUnit,
			"extends": existing.ParentSlug, "ingredients": linesToMaps(existing.Lines),
		}
	}

	if changeset.HasChanges(existingMap, resolved, recipeFieldMap()) {
		if err := s.Upsert(ctx, incoming); err != nil {
			return "", err
		}
		s.writeFile(ctx, slug, resolved, path)
		if existed {
			return ClassificationUpserted, nil
		}
		return ClassificationCreated, nil
	}
	return ClassificationIgnored, nil
}

func (s *RecipeService) writeFile(ctx context.Context, slug string, resolved map[string]any, path string) {
	if s.files == nil {
		return
	}
	if _, err := s.files.Write(ctx, "recipe", slug, resolved, path); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("writing declarative file failed")
	}
}

func linesFrom(recipeSlug string, raw any) []entity.RecipeLine {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	lines := make([]entity.RecipeLine, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		line := entity.RecipeLine{
			RecipeSlug: recipeSlug,
			Unit:       asString(m["quantity"]),
			Notes:      asString(m["notes"]),
		}
		switch asString(m["kind"]) {
		case "sub_recipe":
			line.SubRecipeSlug = asString(m["referent"])
		default:
			line.IngredientSlug = asString(m["referent"])
		}
		lines = append(lines, line)
	}
	return lines
}

func linesToMaps(lines []entity.RecipeLine) []any {
	out := make([]any, 0, len(lines))
	for _, l := range lines {
		kind, referent := "ingredient", l.IngredientSlug
		if !l.IsIngredientLine() {
			kind, referent = "sub_recipe", l.SubRecipeSlug
		}
		out = append(out, map[string]any{
			"kind": kind, "referent": referent, "quantity": l.Unit, "notes": l.Notes,
		})
	}
	return out
}

func (s *RecipeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefixes(ctx, "margin:", "dashboard:"); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func recipeFieldMap() changeset.FieldMap {
	return changeset.FieldMap{
		"name":         changeset.Field("name"),
		"stage":        changeset.Field("stage"),
		"class":        changeset.Field("class"),
		"category":     changeset.Field("category"),
		"sellPrice":    changeset.Field("sellPrice"),
		"includesVat":  changeset.Field("includesVat"),
		"targetMargin": changeset.Field("targetMargin"),
		"yieldAmount":  changeset.Field("yieldAmount"),
		"yieldUnit":    changeset.Field("yieldUnit"),
		"extends":      changeset.Field("extends"),
		"ingredients":  changeset.Field("ingredients"),
	}
}
