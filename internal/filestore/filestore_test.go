package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WriteFilesystemMode(t *testing.T) {
	root := t.TempDir()
	s := New(root, ModeFilesystem)

	path, err := s.Write(context.Background(), "ingredient", "flour", map[string]any{"name": "Flour"}, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ingredients", "flour.yaml"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "auto-generated")
	assert.Contains(t, string(contents), "object: ingredient")
}

func TestStore_WriteHonoursExistingPath(t *testing.T) {
	root := t.TempDir()
	s := New(root, ModeFilesystem)
	existing := filepath.Join(root, "custom", "flour.yaml")

	path, err := s.Write(context.Background(), "ingredient", "flour", map[string]any{"name": "Flour"}, existing)
	require.NoError(t, err)
	assert.Equal(t, existing, path)
}

func TestStore_DatabaseOnlyModeIsNoop(t *testing.T) {
	s := New(t.TempDir(), ModeDatabaseOnly)
	path, err := s.Write(context.Background(), "ingredient", "flour", map[string]any{"name": "Flour"}, "")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestStore_Delete(t *testing.T) {
	root := t.TempDir()
	s := New(root, ModeFilesystem)
	path, err := s.Write(context.Background(), "supplier", "acme", map[string]any{"name": "Acme"}, "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
