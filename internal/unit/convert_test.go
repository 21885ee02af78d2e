package unit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_SameUnitIsIdentity(t *testing.T) {
	got, err := Convert(decimal.NewFromInt(25), "g", "g", Rule{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(got))
}

func TestConvert_StandardTableRoundTrip(t *testing.T) {
	kg, err := Convert(decimal.NewFromInt(2500), "g", "kg", Rule{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(2.5).Equal(kg))

	back, err := Convert(kg, "kg", "g", Rule{})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2500).Equal(back))
}

func TestConvert_CustomRule(t *testing.T) {
	rule, err := ParseRule("1 unit = 180 g")
	require.NoError(t, err)

	grams, err := Convert(decimal.NewFromInt(3), "unit", "g", rule)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(540).Equal(grams))

	units, err := Convert(decimal.NewFromInt(540), "g", "unit", rule)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(units))
}

func TestConvert_NoPathFails(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(1), "g", "unit", Rule{})
	assert.Error(t, err)
}

func TestParseRule_Empty(t *testing.T) {
	r, err := ParseRule("")
	require.NoError(t, err)
	assert.True(t, r.empty())
}

func TestParseRule_Malformed(t *testing.T) {
	_, err := ParseRule("not a rule")
	assert.Error(t, err)
}

func TestSingularize_Aliases(t *testing.T) {
	assert.Equal(t, "l", Singularize("Liters"))
	assert.Equal(t, "kg", Singularize("kilograms"))
	assert.Equal(t, "each", Singularize("pieces"))
}
