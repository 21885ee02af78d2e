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

// IngredientService implements the Ingredient entity service: a
// repository plus cache invalidation plus logger, normalizing before
// persisting, operating on slug-keyed records, and enforcing that an
// ingredient's supplier link cannot change once set.
type IngredientService struct {
	repo      IngredientStore
	suppliers SupplierStore
	cache     Invalidator
	files     FileStore
	log       zerolog.Logger
}

func NewIngredientService(repo IngredientStore, suppliers SupplierStore, cache Invalidator, files FileStore, log zerolog.Logger) *IngredientService {
	return &IngredientService{repo: repo, suppliers: suppliers, cache: cache, files: files, log: log.With().Str("component", "ingredient_service").Logger()}
}

func (s *IngredientService) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.GetIngredient(ctx, slug)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *IngredientService) FindBySlug(ctx context.Context, slug string) (entity.Ingredient, error) {
	return s.repo.GetIngredient(ctx, slug)
}

// FindIngredient satisfies costing.IngredientLookup.
func (s *IngredientService) FindIngredient(ctx context.Context, slug string) (entity.Ingredient, error) {
	return s.repo.GetIngredient(ctx, slug)
}

// Upsert persists ing, enforcing supplier existence and — when ing
// already exists — supplier immutability.
func (s *IngredientService) Upsert(ctx context.Context, ing entity.Ingredient) error {
	ing.Name = strings.TrimSpace(ing.Name)
	if err := ing.Validate(); err != nil {
		return err
	}

	if ing.SupplierSlug != "" {
		if _, err := s.suppliers.GetSupplier(ctx, ing.SupplierSlug); err != nil {
			if isNotFound(err) {
				return &importerr.MissingDependencyError{Dependent: ing.Slug, Referent: ing.SupplierSlug}
			}
			return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
		}
	}

	existing, err := s.repo.GetIngredient(ctx, ing.Slug)
	if err == nil && existing.SupplierSlug != "" && existing.SupplierSlug != ing.SupplierSlug {
		return &importerr.ImmutableFieldError{
			Entity: "ingredient", Field: "supplierSlug",
			Current: existing.SupplierSlug, Attempt: ing.SupplierSlug,
		}
	}
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	if err := s.repo.UpsertIngredient(ctx, ing); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("slug", ing.Slug).Msg("ingredient upserted")
	return nil
}

// Delete removes an ingredient, refusing when any recipe line still
// references it.
func (s *IngredientService) Delete(ctx context.Context, slug string) error {
	inUse, err := s.repo.IngredientIsReferencedByRecipeLine(ctx, slug)
	if err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	if inUse {
		return importerr.Invariant("ingredient %q is still referenced by a recipe line", slug)
	}

	if err := s.repo.DeleteIngredient(ctx, slug); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	s.invalidate(ctx)
	return nil
}

// Processor is the pipeline-facing hook for ingredient entity files.
// resolved's "supplier" key, when present, already carries the
// resolved supplier slug (the reference having been replaced in
// phase 2).
func (s *IngredientService) Processor(ctx context.Context, resolved map[string]any, path string, _ SlugLookup) (Classification, error) {
	slug, _ := resolved["slug"].(string)
	incoming := entity.Ingredient{
		Slug:           slug,
		Name:           asString(resolved["name"]),
		Category:       asString(resolved["category"]),
		PurchaseUnit:   asString(resolved["purchaseUnit"]),
		PurchaseCost:   asInt64(resolved["purchaseCost"]),
		IncludesVAT:    asBool(resolved["includesVat"]),
		ConversionRule: asString(resolved["conversionRate"]),
		SupplierSlug:   asString(resolved["supplier"]),
		Notes:          asString(resolved["notes"]),
	}

	existing, err := s.repo.GetIngredient(ctx, slug)
	existed := err == nil
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	var existingMap map[string]any
	if existed {
		existingMap = map[string]any{
			"name": existing.Name, "category": existing.Category,
			"purchaseUnit": existing.PurchaseUnit, "purchaseCost": existing.PurchaseCost,
			"includesVat": existing.IncludesVAT, "conversionRate": existing.ConversionRule,
			"supplier": existing.SupplierSlug, "notes": existing.Notes,
		}
	}

	if changeset.HasChanges(existingMap, resolved, ingredientFieldMap()) {
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

func (s *IngredientService) writeFile(ctx context.Context, slug string, resolved map[string]any, path string) {
	if s.files == nil {
		return
	}
	if _, err := s.files.Write(ctx, "ingredient", slug, resolved, path); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("writing declarative file failed")
	}
}

func (s *IngredientService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefixes(ctx, "margin:", "dashboard:"); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func ingredientFieldMap() changeset.FieldMap {
	return changeset.FieldMap{
		"name":           changeset.Field("name"),
		"category":       changeset.Field("category"),
		"purchaseUnit":   changeset.Field("purchaseUnit"),
		"purchaseCost":   changeset.Field("purchaseCost"),
		"includesVat":    changeset.Field("includesVat"),
		"conversionRate": changeset.Field("conversionRate"),
		"supplier":       changeset.Field("supplier"),
		"notes":          changeset.Field("notes"),
	}
}
