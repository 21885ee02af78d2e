// Package unit parses quantity-with-unit strings and converts between
// units using a standard dimensional table plus user-supplied custom
// rules.
//
// Amounts are shopspring/decimal.Decimal rather than float64, the same
// way web3-wallet-backend uses decimal.Decimal for exact fixed-point
// math, because the cost engine built on top of this package must
// never compare floats for equality.
package unit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/menucost/engine/internal/importerr"
)

// Quantity is a parsed amount-and-unit pair, e.g. "25g" -> {25, "g"}.
type Quantity struct {
	Amount decimal.Decimal
	Unit   string
}

// Unspecified is returned by Parse for vague quantities such as
// "pinch" or "to taste" — the caller decides whether that is fatal.
var Unspecified = Quantity{}

var vagueQuantities = []string{"to taste", "pinch", "handful", "dash", "splash"}

var (
	mixedFractionRe = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)\s*(.*)$`)
	bareFractionRe  = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)\s*(.*)$`)
	rangeRe         = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*(.*)$`)
	plainRe         = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(.*)$`)
	unitTokenRe     = regexp.MustCompile(`[a-zA-Z]`)
)

// Parse converts a free-form quantity string into a Quantity. It returns
// Unspecified (not an error) for strings that deliberately carry no
// costable amount ("to taste", "pinch", ...), and a wrapped
// importerr.ErrUnitUnparseable for anything else it cannot make sense of.
func Parse(raw string) (Quantity, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unspecified, nil
	}

	lower := strings.ToLower(s)
	for _, vague := range vagueQuantities {
		if strings.Contains(lower, vague) {
			return Unspecified, nil
		}
	}

	if m := mixedFractionRe.FindStringSubmatch(s); m != nil {
		whole := mustDecimal(m[1])
		num := mustDecimal(m[2])
		den := mustDecimal(m[3])
		if den.IsZero() {
			return Unspecified, fmt.Errorf("%w: quantity %q has a zero denominator", importerr.ErrUnitUnparseable, raw)
		}
		amount := whole.Add(num.Div(den))
		return finish(amount, m[4], raw)
	}

	if m := bareFractionRe.FindStringSubmatch(s); m != nil {
		num := mustDecimal(m[1])
		den := mustDecimal(m[2])
		if den.IsZero() {
			return Unspecified, fmt.Errorf("%w: quantity %q has a zero denominator", importerr.ErrUnitUnparseable, raw)
		}
		return finish(num.Div(den), m[3], raw)
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo := mustDecimal(m[1])
		hi := mustDecimal(m[2])
		amount := lo
		if hi.GreaterThan(lo) {
			amount = hi // conservative costing: take the maximum of a range
		}
		return finish(amount, m[3], raw)
	}

	if m := plainRe.FindStringSubmatch(s); m != nil {
		return finish(mustDecimal(m[1]), m[2], raw)
	}

	return Unspecified, fmt.Errorf("%w: quantity %q has no leading amount", importerr.ErrUnitUnparseable, raw)
}

func finish(amount decimal.Decimal, unitPart, raw string) (Quantity, error) {
	token := strings.TrimSpace(unitPart)
	if token == "" || !unitTokenRe.MatchString(token) {
		return Unspecified, fmt.Errorf("%w: quantity %q has no alphabetic unit token", importerr.ErrUnitUnparseable, raw)
	}
	return Quantity{Amount: amount, Unit: strings.ToLower(token)}, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
