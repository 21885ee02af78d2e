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

// SupplierService implements the Supplier entity service.
type SupplierService struct {
	repo  SupplierStore
	cache Invalidator
	files FileStore
	log   zerolog.Logger
}

func NewSupplierService(repo SupplierStore, cache Invalidator, files FileStore, log zerolog.Logger) *SupplierService {
	return &SupplierService{repo: repo, cache: cache, files: files, log: log.With().Str("component", "supplier_service").Logger()}
}

// Exists reports whether slug is already persisted.
func (s *SupplierService) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.GetSupplier(ctx, slug)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// FindBySlug returns the supplier identified by slug.
func (s *SupplierService) FindBySlug(ctx context.Context, slug string) (entity.Supplier, error) {
	return s.repo.GetSupplier(ctx, slug)
}

// Upsert creates or replaces a supplier. Slug is never mutated in
// place by design — the caller always supplies the target slug.
func (s *SupplierService) Upsert(ctx context.Context, sup entity.Supplier) error {
	sup.Name = strings.TrimSpace(sup.Name)
	if err := sup.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpsertSupplier(ctx, sup); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("slug", sup.Slug).Msg("supplier upserted")
	return nil
}

// Delete removes a supplier, refusing when any ingredient still
// references it.
func (s *SupplierService) Delete(ctx context.Context, slug string) error {
	inUse, err := s.repo.SupplierHasIngredients(ctx, slug)
	if err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	if inUse {
		return importerr.Invariant("supplier %q is still referenced by an ingredient", slug)
	}

	if err := s.repo.DeleteSupplier(ctx, slug); err != nil {
		return fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}
	s.invalidate(ctx)
	return nil
}

// Processor is the pipeline-facing hook for supplier entity files.
func (s *SupplierService) Processor(ctx context.Context, resolved map[string]any, path string, _ SlugLookup) (Classification, error) {
	slug, _ := resolved["slug"].(string)
	incoming := entity.Supplier{
		Slug:         slug,
		Name:         asString(resolved["name"]),
		ContactName:  asString(resolved["contactName"]),
		ContactEmail: asString(resolved["contactEmail"]),
		ContactPhone: asString(resolved["contactPhone"]),
		Notes:        asString(resolved["notes"]),
	}

	existing, err := s.repo.GetSupplier(ctx, slug)
	existed := err == nil
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%w: %s", importerr.ErrStoreFailure, err)
	}

	var existingMap map[string]any
	if existed {
		existingMap = map[string]any{
			"name":         existing.Name,
			"contactName":  existing.ContactName,
			"contactEmail": existing.ContactEmail,
			"contactPhone": existing.ContactPhone,
			"notes":        existing.Notes,
		}
	}

	if changeset.HasChanges(existingMap, resolved, supplierFieldMap()) {
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

func (s *SupplierService) writeFile(ctx context.Context, slug string, resolved map[string]any, path string) {
	if s.files == nil {
		return
	}
	if _, err := s.files.Write(ctx, "supplier", slug, resolved, path); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("writing declarative file failed")
	}
}

func (s *SupplierService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefixes(ctx, "margin:", "dashboard:"); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

func supplierFieldMap() changeset.FieldMap {
	return changeset.FieldMap{
		"name":         changeset.Field("name"),
		"contactName":  changeset.Field("contactName"),
		"contactEmail": changeset.Field("contactEmail"),
		"contactPhone": changeset.Field("contactPhone"),
		"notes":        changeset.Field("notes"),
	}
}
