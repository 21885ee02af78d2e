package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menucost/engine/internal/entity"
	"github.com/menucost/engine/internal/service"
	"github.com/menucost/engine/internal/store"
)

// memStore is an in-memory stand-in for the pgx-backed store, enough to
// exercise every entity service's port without a database.
type memStore struct {
	suppliers   map[string]entity.Supplier
	ingredients map[string]entity.Ingredient
	recipes     map[string]entity.Recipe
}

func newMemStore() *memStore {
	return &memStore{
		suppliers:   make(map[string]entity.Supplier),
		ingredients: make(map[string]entity.Ingredient),
		recipes:     make(map[string]entity.Recipe),
	}
}

func (m *memStore) GetSupplier(_ context.Context, slug string) (entity.Supplier, error) {
	s, ok := m.suppliers[slug]
	if !ok {
		return entity.Supplier{}, store.ErrNotFound
	}
	return s, nil
}
func (m *memStore) UpsertSupplier(_ context.Context, s entity.Supplier) error {
	m.suppliers[s.Slug] = s
	return nil
}
func (m *memStore) DeleteSupplier(_ context.Context, slug string) error {
	delete(m.suppliers, slug)
	return nil
}
func (m *memStore) SupplierHasIngredients(_ context.Context, supplierSlug string) (bool, error) {
	for _, ing := range m.ingredients {
		if ing.SupplierSlug == supplierSlug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetIngredient(_ context.Context, slug string) (entity.Ingredient, error) {
	i, ok := m.ingredients[slug]
	if !ok {
		return entity.Ingredient{}, store.ErrNotFound
	}
	return i, nil
}
func (m *memStore) UpsertIngredient(_ context.Context, i entity.Ingredient) error {
	m.ingredients[i.Slug] = i
	return nil
}
func (m *memStore) DeleteIngredient(_ context.Context, slug string) error {
	delete(m.ingredients, slug)
	return nil
}
func (m *memStore) IngredientIsReferencedByRecipeLine(_ context.Context, ingredientSlug string) (bool, error) {
	for _, r := range m.recipes {
		for _, l := range r.Lines {
			if l.IngredientSlug == ingredientSlug {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) GetRecipe(_ context.Context, slug string) (entity.Recipe, error) {
	r, ok := m.recipes[slug]
	if !ok {
		return entity.Recipe{}, store.ErrNotFound
	}
	return r, nil
}
func (m *memStore) UpsertRecipe(_ context.Context, r entity.Recipe) error {
	m.recipes[r.Slug] = r
	return nil
}
func (m *memStore) DeleteRecipe(_ context.Context, slug string) error {
	delete(m.recipes, slug)
	return nil
}
func (m *memStore) RecipeIsReferencedAsSubRecipe(_ context.Context, recipeSlug string) (bool, error) {
	for _, r := range m.recipes {
		for _, l := range r.Lines {
			if l.SubRecipeSlug == recipeSlug {
				return true, nil
			}
		}
	}
	return false, nil
}
func (m *memStore) RecipesByParent(_ context.Context, parentSlug string) ([]entity.Recipe, error) {
	var out []entity.Recipe
	for _, r := range m.recipes {
		if r.ParentSlug == parentSlug {
			out = append(out, r)
		}
	}
	return out, nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidatePrefixes(context.Context, ...string) error { return nil }

func newPipeline(t *testing.T, ms *memStore) *Pipeline {
	t.Helper()
	log := zerolog.Nop()
	svcs := service.NewServices(service.Dependencies{
		Suppliers:   ms,
		Ingredients: ms,
		Recipes:     ms,
		Cache:       noopInvalidator{},
		Logger:      log,
	})
	return New(Options{ProjectRoot: t.TempDir(), Processors: svcs.Processors()}, log)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_SupplierIngredientRecipe_PlainCost(t *testing.T) {
	ms := newMemStore()
	dir := t.TempDir()
	log := zerolog.Nop()
	svcs := service.NewServices(service.Dependencies{Suppliers: ms, Ingredients: ms, Recipes: ms, Cache: noopInvalidator{}, Logger: log})
	p := New(Options{ProjectRoot: dir, Processors: svcs.Processors()}, log)

	supplierPath := writeFile(t, dir, "butcher.yaml", `
object: supplier
data:
  slug: butcher
  name: The Butcher
`)
	ingredientPath := writeFile(t, dir, "ham.yaml", `
object: ingredient
data:
  slug: ham
  name: Ham
  category: meat
  purchase:
    unit: 1kg
    cost: 599
    vat: false
  supplier:
    uses: "./butcher.yaml"
`)
	recipePath := writeFile(t, dir, "sandwich.yaml", `
object: recipe
data:
  slug: sandwich
  name: Sandwich
  stage: active
  class: menu_item
  costing:
    price: 400
    margin: 65
    vat: false
  ingredients:
    - uses: "./ham.yaml"
      with:
        unit: 25g
`)

	result, err := p.Run(context.Background(), []string{supplierPath, ingredientPath, recipePath})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Stats.Created)
	assert.Equal(t, 0, result.Stats.Failed)

	recipe, err := ms.GetRecipe(context.Background(), "sandwich")
	require.NoError(t, err)
	require.Len(t, recipe.Lines, 1)
	assert.Equal(t, "ham", recipe.Lines[0].IngredientSlug)
	assert.Equal(t, "25g", recipe.Lines[0].Unit)

	ingredient, err := ms.GetIngredient(context.Background(), "ham")
	require.NoError(t, err)
	assert.Equal(t, "butcher", ingredient.SupplierSlug)
}

func TestRun_ReimportWithNoChangesIsIgnored(t *testing.T) {
	ms := newMemStore()
	dir := t.TempDir()
	log := zerolog.Nop()
	svcs := service.NewServices(service.Dependencies{Suppliers: ms, Ingredients: ms, Recipes: ms, Cache: noopInvalidator{}, Logger: log})

	path := writeFile(t, dir, "butcher.yaml", `
object: supplier
data:
  slug: butcher
  name: The Butcher
`)

	p1 := New(Options{ProjectRoot: dir, Processors: svcs.Processors()}, log)
	first, err := p1.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Stats.Created)

	p2 := New(Options{ProjectRoot: dir, Processors: svcs.Processors()}, log)
	second, err := p2.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stats.Created)
	assert.Equal(t, 0, second.Stats.Upserted)
	assert.Equal(t, 0, second.Stats.Failed)
	assert.Equal(t, 1, second.Stats.Ignored)
}

func TestRun_ReimportRecipeWithLinesIsIgnored(t *testing.T) {
	ms := newMemStore()
	dir := t.TempDir()
	log := zerolog.Nop()
	svcs := service.NewServices(service.Dependencies{Suppliers: ms, Ingredients: ms, Recipes: ms, Cache: noopInvalidator{}, Logger: log})

	supplierPath := writeFile(t, dir, "butcher.yaml", `
object: supplier
data:
  slug: butcher
  name: The Butcher
`)
	ingredientPath := writeFile(t, dir, "ham.yaml", `
object: ingredient
data:
  slug: ham
  name: Ham
  category: meat
  purchase:
    unit: 1kg
    cost: 599
    vat: false
  supplier:
    uses: "./butcher.yaml"
`)
	recipePath := writeFile(t, dir, "sandwich.yaml", `
object: recipe
data:
  slug: sandwich
  name: Sandwich
  stage: active
  class: menu_item
  costing:
    price: 400
    margin: 65
    vat: false
  ingredients:
    - uses: "./ham.yaml"
      with:
        unit: 25g
`)

	files := []string{supplierPath, ingredientPath, recipePath}

	p1 := New(Options{ProjectRoot: dir, Processors: svcs.Processors()}, log)
	first, err := p1.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Stats.Created)

	p2 := New(Options{ProjectRoot: dir, Processors: svcs.Processors()}, log)
	second, err := p2.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stats.Created)
	assert.Equal(t, 0, second.Stats.Upserted)
	assert.Equal(t, 0, second.Stats.Failed)
	assert.Equal(t, 3, second.Stats.Ignored)
}

func TestRun_DependencyCycleFails(t *testing.T) {
	ms := newMemStore()
	dir := t.TempDir()
	p := newPipeline(t, ms)
	p.opts.ProjectRoot = dir

	aPath := writeFile(t, dir, "a.yaml", `
object: recipe
data:
  slug: a
  name: A
  class: sub_recipe
  yieldAmount: "1"
  yieldUnit: unit
  costing:
    price: 100
  ingredients:
    - uses: "./b.yaml"
      with:
        unit: 1 unit
`)
	writeFile(t, dir, "b.yaml", `
object: recipe
data:
  slug: b
  name: B
  class: sub_recipe
  yieldAmount: "1"
  yieldUnit: unit
  costing:
    price: 100
  ingredients:
    - uses: "./a.yaml"
      with:
        unit: 1 unit
`)

	_, err := p.Run(context.Background(), []string{aPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency cycle")
}

func TestRun_MissingDependencyFailsFile(t *testing.T) {
	ms := newMemStore()
	p := newPipeline(t, ms)
	dir := p.opts.ProjectRoot

	path := writeFile(t, dir, "sandwich.yaml", `
object: recipe
data:
  slug: sandwich
  name: Sandwich
  class: menu_item
  costing:
    price: 400
    margin: 65
  ingredients:
    - uses: "slug:ghost"
      with:
        unit: 25g
`)

	result, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "MissingDependency", result.Errors[0].Kind)
	assert.Equal(t, 1, result.Stats.Failed)
}

func TestRun_ImportOnlyDoesNotPersist(t *testing.T) {
	ms := newMemStore()
	p := newPipeline(t, ms)
	dir := p.opts.ProjectRoot
	p.opts.ImportOnly = true

	path := writeFile(t, dir, "butcher.yaml", `
object: supplier
data:
  slug: butcher
  name: The Butcher
`)

	result, err := p.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Contains(t, result.Resolved, path)
	assert.Equal(t, "butcher", result.Resolved[path]["slug"])

	_, err = ms.GetSupplier(context.Background(), "butcher")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
