package unit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/menucost/engine/internal/importerr"
)

// Rule is a parsed custom conversion, e.g. "1 unit = 180 g" for an
// ingredient purchased by the each but consumed by weight.
type Rule struct {
	FromAmount decimal.Decimal
	FromUnit   string
	ToAmount   decimal.Decimal
	ToUnit     string
}

var ruleRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([a-zA-Z]+)\s*=\s*(\d+(?:\.\d+)?)\s*([a-zA-Z]+)\s*$`)

// ParseRule parses a conversion_rule string of the form
// "<a> <unit_a> = <b> <unit_b>". An empty string yields a zero Rule and
// no error — the caller treats a zero Rule as "no custom rule".
func ParseRule(raw string) (Rule, error) {
	if strings.TrimSpace(raw) == "" {
		return Rule{}, nil
	}
	m := ruleRe.FindStringSubmatch(raw)
	if m == nil {
		return Rule{}, importerr.Malformed("conversion rule %q does not match '<a> <unit> = <b> <unit>'", raw)
	}
	fromAmount := mustDecimal(m[1])
	toAmount := mustDecimal(m[3])
	if fromAmount.IsZero() || toAmount.IsZero() {
		return Rule{}, importerr.Malformed("conversion rule %q has a zero-valued side", raw)
	}
	return Rule{
		FromAmount: fromAmount,
		FromUnit:   Singularize(m[2]),
		ToAmount:   toAmount,
		ToUnit:     Singularize(m[4]),
	}, nil
}

func (r Rule) empty() bool {
	return r.FromUnit == "" && r.ToUnit == ""
}

// matches reports whether the rule connects from and to, in either
// direction.
func (r Rule) matches(from, to string) bool {
	return (r.FromUnit == from && r.ToUnit == to) || (r.FromUnit == to && r.ToUnit == from)
}

// Convert converts amount from one unit to another, following spec
// §4.1's four-step algorithm: same-unit shortcut, standard dimensional
// table, custom rule scaling, then failure.
//
// rule is the ingredient's optional custom conversion_rule; pass a zero
// Rule when none applies.
func Convert(amount decimal.Decimal, from, to string, rule Rule) (decimal.Decimal, error) {
	from = Singularize(from)
	to = Singularize(to)

	if from == to {
		return amount, nil
	}

	fromEntry, fromOK := standardTable[from]
	toEntry, toOK := standardTable[to]
	if fromOK && toOK && fromEntry.dimension == toEntry.dimension {
		baseAmount := amount.Mul(decimal.NewFromFloat(fromEntry.toBase))
		return baseAmount.Div(decimal.NewFromFloat(toEntry.toBase)), nil
	}

	if !rule.empty() && rule.matches(from, to) {
		if rule.FromUnit == from {
			return amount.Mul(rule.ToAmount).Div(rule.FromAmount), nil
		}
		return amount.Mul(rule.FromAmount).Div(rule.ToAmount), nil
	}

	return decimal.Zero, fmt.Errorf("%w: no path from %q to %q", importerr.ErrNoConversionPath, from, to)
}
