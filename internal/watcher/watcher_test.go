package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingImporter struct {
	calls int
	slug  string
}

func (c *countingImporter) ImportPath(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.slug, nil
}

func TestHashFile_DetectsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flour.yaml")
	require.NoError(t, os.WriteFile(path, []byte("object: ingredient\n"), 0o644))

	h1, err := hashFile(path)
	require.NoError(t, err)
	h2, err := hashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	require.NoError(t, os.WriteFile(path, []byte("object: ingredient\ndata: {}\n"), 0o644))
	h3, err := hashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestWatcher_SettleSuppressesUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flour.yaml")
	require.NoError(t, os.WriteFile(path, []byte("object: ingredient\n"), 0o644))

	importer := &countingImporter{slug: "flour"}
	w, err := New(importer, zerolog.Nop(), 10*time.Millisecond)
	require.NoError(t, err)
	go w.runCoordinator(context.Background())

	w.settle(path, 0)
	w.settle(path, 0) // identical content: second call must be suppressed

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, importer.calls)
}
