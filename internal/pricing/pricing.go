// Package pricing derives display prices from a base unit price, a discount
// percent and a quantity. All results are rounded half-up to two places.
package pricing

import "github.com/shopspring/decimal"

const places = 2

var (
	taxRate = decimal.RequireFromString("0.10")
	hundred = decimal.NewFromInt(100)
)

// Round rounds half away from zero, which is half-up for the non-negative
// amounts handled here.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(places)
}

// Tax is 10% of the unit price.
func Tax(unitPrice decimal.Decimal) decimal.Decimal {
	return Round(unitPrice.Mul(taxRate))
}

// FinalPrice applies discountPercent (0 when the product has no discount).
func FinalPrice(unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return Round(unitPrice.Mul(factor))
}

func LineTotal(finalUnitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round(finalUnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

func CartTotal(lineTotals []decimal.Decimal) decimal.Decimal {
	return Round(decimal.Sum(decimal.Zero, lineTotals...))
}

func CartItemCount(quantities []int) int {
	n := 0
	for _, q := range quantities {
		n += q
	}
	return n
}

// DiscountLabel renders a percent as "-25%" or "-12.5%".
func DiscountLabel(percent decimal.Decimal) string {
	if percent.IsInteger() {
		return "-" + percent.Truncate(0).String() + "%"
	}
	return "-" + percent.StringFixed(1) + "%"
}

// Money is an amount that always encodes with two decimal places ("75.00"),
// unlike decimal.Decimal which trims trailing zeros. Decoding accepts any
// decimal string or number.
type Money struct {
	decimal.Decimal
}

func M(d decimal.Decimal) Money { return Money{Decimal: Round(d)} }

// MaybeM converts a nullable amount; invalid becomes nil.
func MaybeM(d decimal.NullDecimal) *Money {
	if !d.Valid {
		return nil
	}
	m := M(d.Decimal)
	return &m
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(places) + `"`), nil
}
