package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menucost/engine/internal/importerr"
)

func TestDetectCycle_NoCycle(t *testing.T) {
	g := New()
	sauce := Node{Kind: "recipe", Slug: "tomato-sauce"}
	bread := Node{Kind: "recipe", Slug: "bread"}
	flour := Node{Kind: "ingredient", Slug: "flour"}

	g.SetDependency(sauce, flour)
	g.SetDependency(bread, flour)

	assert.NoError(t, g.DetectCycle())
}

func TestDetectCycle_DirectCycle(t *testing.T) {
	g := New()
	a := Node{Kind: "recipe", Slug: "a"}
	b := Node{Kind: "recipe", Slug: "b"}

	g.SetDependency(a, b)
	g.SetDependency(b, a)

	err := g.DetectCycle()
	require.Error(t, err)
	assert.True(t, errors.Is(err, importerr.ErrDependencyCycle))

	var cycleErr *importerr.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Path)
}

func TestDetectCycle_SelfReference(t *testing.T) {
	g := New()
	a := Node{Kind: "recipe", Slug: "a"}
	g.SetDependency(a, a)

	assert.Error(t, g.DetectCycle())
}

func TestTopoOrder_DependenciesComeFirst(t *testing.T) {
	g := New()
	sauce := Node{Kind: "recipe", Slug: "tomato-sauce"}
	pizza := Node{Kind: "recipe", Slug: "pizza"}
	flour := Node{Kind: "ingredient", Slug: "flour"}

	g.SetDependency(pizza, sauce)
	g.SetDependency(sauce, flour)

	order := g.TopoOrder()
	index := func(n Node) int {
		for i, x := range order {
			if x == n {
				return i
			}
		}
		return -1
	}

	assert.Less(t, index(flour), index(sauce))
	assert.Less(t, index(sauce), index(pizza))
}
