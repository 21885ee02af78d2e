package store

import (
	"context"
	"strings"
	"time"

	"github.com/menucost/engine/internal/entity"
)

// GetSupplier fetches a single supplier by slug.
func (s *Store) GetSupplier(ctx context.Context, slug string) (entity.Supplier, error) {
	return getSupplier(ctx, s.pool, slug)
}

func getSupplier(ctx context.Context, q queryExecutor, slug string) (entity.Supplier, error) {
	var sup entity.Supplier
	err := q.QueryRow(ctx, `
		SELECT slug, name, contact_name, contact_email, contact_phone, notes, created_at, updated_at
		FROM suppliers
		WHERE slug = $1
	`, slug).Scan(
		&sup.Slug, &sup.Name, &sup.ContactName, &sup.ContactEmail, &sup.ContactPhone, &sup.Notes,
		&sup.CreatedAt, &sup.UpdatedAt,
	)
	if err != nil {
		return entity.Supplier{}, translateError(err)
	}
	return sup, nil
}

// UpsertSupplier creates or replaces a supplier row keyed by slug.
func (s *Store) UpsertSupplier(ctx context.Context, sup entity.Supplier) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO suppliers (slug, name, contact_name, contact_email, contact_phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			contact_name = EXCLUDED.contact_name,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			notes = EXCLUDED.notes,
			updated_at = $7
	`,
		sup.Slug, strings.TrimSpace(sup.Name), sup.ContactName, sup.ContactEmail, sup.ContactPhone, sup.Notes, now,
	)
	return translateError(err)
}

// DeleteSupplier removes a supplier row. The caller is responsible for
// checking SupplierHasIngredients first; the foreign key also protects
// the invariant at the database level.
func (s *Store) DeleteSupplier(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM suppliers WHERE slug = $1`, slug)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SupplierHasIngredients reports whether any ingredient still links to
// supplierSlug.
func (s *Store) SupplierHasIngredients(ctx context.Context, supplierSlug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM ingredients WHERE supplier_slug = $1)
	`, supplierSlug).Scan(&exists)
	if err != nil {
		return false, translateError(err)
	}
	return exists, nil
}

// ListSuppliers returns suppliers matching filter, ordered by name.
func (s *Store) ListSuppliers(ctx context.Context, search string) ([]entity.Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slug, name, contact_name, contact_email, contact_phone, notes, created_at, updated_at
		FROM suppliers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`, strings.TrimSpace(search))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []entity.Supplier
	for rows.Next() {
		var sup entity.Supplier
		if err := rows.Scan(&sup.Slug, &sup.Name, &sup.ContactName, &sup.ContactEmail, &sup.ContactPhone, &sup.Notes, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
			return nil, translateError(err)
		}
		out = append(out, sup)
	}
	return out, translateError(rows.Err())
}
