package service

import (
	"strings"

	"example.com/storefront/internal/errx"
	"example.com/storefront/internal/pricing"
)

// ordering is a whitelist of sortable fields; a leading '-' means descending.
type ordering struct {
	fields []string
	def    string
}

func (o ordering) parse(raw string) (field string, desc bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = o.def
	}
	field = raw
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	for _, f := range o.fields {
		if f == field {
			return field, desc, nil
		}
	}
	return "", false, errx.Validation("ordering", "unknown ordering: "+raw)
}

func cmpInt[T ~int | ~int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpNullMoney keeps nulls last in either direction; callers negate the
// result for descending order.
func cmpNullMoney(a, b *pricing.Money, desc bool) int {
	last := 1
	if desc {
		last = -1
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return last
	case b == nil:
		return -last
	}
	return a.Cmp(b.Decimal)
}
