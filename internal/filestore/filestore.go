// Package filestore keeps the on-disk declarative entity files in sync
// with whatever the import pipeline or the entity services just
// persisted, or does nothing at all in database-only deployments.
//
// Shaped like a small client wrapping an I/O backend behind
// write/delete, applied here to the local filesystem instead of an S3
// object store, since the declarative files this package manages are
// the operator's own project directory, not a supplementary asset
// bucket, which stays in internal/assets wired to MinIO).
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Mode selects whether writes touch the filesystem at all.
type Mode string

const (
	// ModeFilesystem writes/deletes entity files under root.
	ModeFilesystem Mode = "filesystem"
	// ModeDatabaseOnly no-ops every write and delete.
	ModeDatabaseOnly Mode = "database-only"
)

// Document is the {object, data} envelope every entity file is
// serialised as.
type Document struct {
	Object string `yaml:"object" json:"object"`
	Data   any    `yaml:"data" json:"data"`
}

const banner = "# auto-generated by menucost — edits are preserved on re-import, this header is not\n"

// Store implements the filesystem-or-no-op storage contract.
type Store struct {
	root string
	mode Mode
}

// New builds a Store rooted at root in the given Mode.
func New(root string, mode Mode) *Store {
	return &Store{root: root, mode: mode}
}

// Mode reports the active mode.
func (s *Store) Mode() Mode { return s.mode }

// Write serialises data as a Document under
// <root>/<type>s/<slug>.yaml, honouring existingPath when the entity
// already lives somewhere else in the project tree. In
// ModeDatabaseOnly it is a no-op that returns an empty path.
func (s *Store) Write(_ context.Context, entityType, slug string, data any, existingPath string) (string, error) {
	if s.mode == ModeDatabaseOnly {
		return "", nil
	}

	path := existingPath
	if path == "" {
		path = filepath.Join(s.root, entityType+"s", slug+".yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", path, err)
	}

	doc := Document{Object: entityType, Data: data}
	encoded, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}

	contents := append([]byte(banner), encoded...)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

// Delete removes path. In ModeDatabaseOnly it is a no-op.
func (s *Store) Delete(_ context.Context, path string) error {
	if s.mode == ModeDatabaseOnly || path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}
