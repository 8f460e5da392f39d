package cart

import (
	"errors"

	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

// StorageKey is the fixed name the cart record is persisted under.
const StorageKey = "cart-storage"

// RecordVersion is written into every persisted record.
const RecordVersion = 0

// MaxQuantity bounds a single line so quantity arithmetic never overflows.
const MaxQuantity = 1_000_000

var ErrInvalidQuantity = errors.New("quantity must be between 1 and 1000000")

// Line is one product in the cart. UnitPriceAtOrder is captured on the first
// add and never re-read from the catalog.
type Line struct {
	ProductID        nat.Nat `json:"productId"`
	Quantity         int     `json:"quantity"`
	UnitPriceAtOrder nat.Nat `json:"unitPriceAtOrder"`
}

func (l Line) Subtotal() nat.Nat {
	return l.UnitPriceAtOrder.MulInt(l.Quantity)
}

// ItemNew.ProductID is a pointer so a missing or null id is told apart from 0.
type ItemNew struct {
	ProductID *nat.Nat `json:"productId"`
	Quantity  int     `json:"quantity"`
}

type ItemUp struct {
	Quantity int `json:"quantity"`
}

// ClampQuantity applies the storefront input rule: quantities are pulled into
// [1, MaxQuantity].
func ClampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}
