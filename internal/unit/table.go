package unit

import "strings"

// dimension groups units that can be converted into one another via a
// linear scale factor against the dimension's base unit.
type dimension string

const (
	dimMass   dimension = "mass"
	dimVolume dimension = "volume"
	dimCount  dimension = "count"
)

// tableEntry is one unit's linear factor against its dimension's base
// unit (gram for mass, millilitre for volume, bare unit for count).
type tableEntry struct {
	dimension dimension
	toBase    float64
}

// standardTable covers the common mass, volume, and count units a
// kitchen recipe is likely to quote quantities in.
var standardTable = map[string]tableEntry{
	"mg": {dimMass, 0.001},
	"g":  {dimMass, 1},
	"kg": {dimMass, 1000},
	"oz": {dimMass, 28.3495},
	"lb": {dimMass, 453.592},

	"ml":   {dimVolume, 1},
	"l":    {dimVolume, 1000},
	"tsp":  {dimVolume, 4.92892},
	"tbsp": {dimVolume, 14.7868},
	"cup":  {dimVolume, 236.588},
	"floz": {dimVolume, 29.5735},

	"unit": {dimCount, 1},
	"each": {dimCount, 1},
	"dz":   {dimCount, 12},
}

// aliases maps loose spellings onto the canonical table keys, grounded
// on teacher NormalizeUnit's switch statement.
var aliases = map[string]string{
	"liter": "l", "litre": "l", "liters": "l", "litres": "l", "lt": "l", "lts": "l",
	"gram": "g", "grams": "g", "gr": "g",
	"kilogram": "kg", "kilograms": "kg", "kgs": "kg",
	"milliliter": "ml", "millilitre": "ml", "milliliters": "ml", "millilitres": "ml", "mls": "ml",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp",
	"cups": "cup",
	"fl oz": "floz", "fluid ounce": "floz", "fluid ounces": "floz",
	"units": "unit", "eaches": "each", "pieces": "each", "piece": "each",
	"dozen": "dz", "dozens": "dz",
}

// Singularize normalises a unit token to lowercase, strips simple
// trailing plural "s", and resolves known aliases — grounded on teacher
// NormalizeUnit, generalised to run before conversion rather than only
// before validation.
func Singularize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if canon, ok := aliases[t]; ok {
		return canon
	}
	if _, ok := standardTable[t]; ok {
		return t
	}
	if strings.HasSuffix(t, "s") && len(t) > 1 {
		stripped := strings.TrimSuffix(t, "s")
		if canon, ok := aliases[stripped]; ok {
			return canon
		}
		return stripped
	}
	return t
}
