package unit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainAmount(t *testing.T) {
	q, err := Parse("25g")
	require.NoError(t, err)
	assert.Equal(t, "g", q.Unit)
	assert.True(t, decimal.NewFromInt(25).Equal(q.Amount))
}

func TestParse_MixedFraction(t *testing.T) {
	q, err := Parse("1 1/2 cups")
	require.NoError(t, err)
	assert.Equal(t, "cups", q.Unit)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(q.Amount))
}

func TestParse_BareFraction(t *testing.T) {
	q, err := Parse("1/2 cup")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(0.5).Equal(q.Amount))
}

func TestParse_RangeTakesMaximum(t *testing.T) {
	q, err := Parse("2-3 tbsp")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(q.Amount))
}

func TestParse_VagueQuantityIsUnspecified(t *testing.T) {
	q, err := Parse("a pinch of salt")
	require.NoError(t, err)
	assert.Equal(t, Unspecified, q)
}

func TestParse_EmptyIsUnspecified(t *testing.T) {
	q, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Unspecified, q)
}

func TestParse_ZeroDenominatorFails(t *testing.T) {
	_, err := Parse("1/0 cup")
	assert.Error(t, err)
}

func TestParse_MissingUnitFails(t *testing.T) {
	_, err := Parse("42")
	assert.Error(t, err)
}
