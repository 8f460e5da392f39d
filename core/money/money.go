package money

import (
	"errors"
	"strings"

	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/shopspring/decimal"
)

const PlaceholderImage = "/assets/generated/product-placeholder.dim_800x800.png"

var ErrInvalidPrice = errors.New("please enter a valid price")

// Dollars views an amount of cents as a decimal dollar amount.
func Dollars(cents nat.Nat) decimal.Decimal {
	return decimal.NewFromBigInt(cents.Big(), -2)
}

// Format renders an amount of cents as en-US dollars, e.g. "$1,234.05".
func Format(cents nat.Nat) string {
	whole, frac, _ := strings.Cut(Dollars(cents).StringFixed(2), ".")

	var b strings.Builder
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// ParseDollars converts admin price input such as "12.99" or "$1,200" into
// cents. The amount must be positive, written in plain decimal notation and
// have at most two decimals.
func ParseDollars(s string) (nat.Nat, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	if s == "" || strings.ContainsAny(s, "eE") {
		return nat.Nat{}, ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nat.Nat{}, ErrInvalidPrice
	}

	cents := d.Shift(2)
	if cents.Sign() <= 0 || !cents.IsInteger() {
		return nat.Nat{}, ErrInvalidPrice
	}

	n, err := nat.Parse(cents.BigInt().String())
	if err != nil {
		return nat.Nat{}, ErrInvalidPrice
	}
	return n, nil
}

// ImageURL falls back to the placeholder when a product has no image.
func ImageURL(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return PlaceholderImage
	}
	return ref
}
