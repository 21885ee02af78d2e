package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Absolute(t *testing.T) {
	ref, err := Resolve("@/ingredients/flour.yaml", "/project", "/project/recipes", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, KindPath, ref.Kind)
	assert.Equal(t, "/project/ingredients/flour.yaml", ref.Value)
}

func TestResolve_Relative(t *testing.T) {
	ref, err := Resolve("../ingredients/flour.yaml", "/project", "/project/recipes", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "/project/ingredients/flour.yaml", ref.Value)
}

func TestResolve_Symbolic(t *testing.T) {
	ref, err := Resolve("slug:flour", "/project", "/project/recipes", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, KindSlug, ref.Kind)
	assert.Equal(t, "flour", ref.Value)
}

func TestResolve_SymbolicRejectsExtension(t *testing.T) {
	_, err := Resolve("slug:flour.yaml", "/project", "/project/recipes", ".yaml")
	assert.Error(t, err)
}

func TestResolve_PathRequiresExtension(t *testing.T) {
	_, err := Resolve("@/ingredients/flour", "/project", "/project/recipes", ".yaml")
	assert.Error(t, err)
}

func TestResolve_Unrecognised(t *testing.T) {
	_, err := Resolve("flour.yaml", "/project", "/project/recipes", ".yaml")
	assert.Error(t, err)
}

func TestLooksLikeReference(t *testing.T) {
	assert.True(t, LooksLikeReference("@/a.yaml"))
	assert.True(t, LooksLikeReference("./a.yaml"))
	assert.True(t, LooksLikeReference("../a.yaml"))
	assert.True(t, LooksLikeReference("slug:a"))
	assert.False(t, LooksLikeReference("a.yaml"))
}
