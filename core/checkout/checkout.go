// Package checkout turns a session cart and the customer's details into a
// wholesale order request on the backend.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/cart"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/validate"
	"github.com/sirupsen/logrus"
)

const (
	MsgFixFields = "Please fill in all required fields correctly"
	MsgEmptyCart = "Your cart is empty"
)

type CustomerDetails struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,basic_email"`
	Phone       string `json:"phone" validate:"required"`
	FullAddress string `json:"fullAddress" validate:"required"`
}

func (d CustomerDetails) trimmed() CustomerDetails {
	return CustomerDetails{
		Name:        strings.TrimSpace(d.Name),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		FullAddress: strings.TrimSpace(d.FullAddress),
	}
}

var messages = map[string]string{
	"name.required":        "Name is required",
	"phone.required":       "Phone is required",
	"email.required":       "Email is required",
	"email.basic_email":    "Invalid email format",
	"fullAddress.required": "Address is required",
}

// Validate reports every problem at once, keyed by field. An empty cart is
// reported under "cart". It returns nil when the order can be placed.
func Validate(d CustomerDetails, cartLen int) validate.FieldErrors {
	fe := validate.CheckFields(d.trimmed(), messages)
	if cartLen == 0 {
		if fe == nil {
			fe = make(validate.FieldErrors)
		}
		fe["cart"] = MsgEmptyCart
	}
	return fe
}

// Flow submits the cart of one session.
type Flow struct {
	Cart   *cart.Store
	Placer backend.OrderPlacer
	Log    logrus.FieldLogger
}

// Submit validates, places the order and clears the cart only once the
// backend has accepted it. A validation failure is returned as
// validate.FieldErrors and nothing is sent. On a backend failure the cart is
// left as it was so the customer can retry.
func (f Flow) Submit(ctx context.Context, d CustomerDetails) (nat.Nat, error) {
	lines := f.Cart.Lines()

	if fe := Validate(d, len(lines)); fe != nil {
		return nat.Nat{}, fe
	}
	d = d.trimmed()

	items := make([]backend.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, backend.OrderItem{
			ProductID:        l.ProductID,
			Quantity:         nat.FromUint64(uint64(l.Quantity)),
			UnitPriceAtOrder: l.UnitPriceAtOrder,
		})
	}

	customer := backend.CustomerDetails{
		Name:        d.Name,
		Email:       d.Email,
		Phone:       d.Phone,
		FullAddress: d.FullAddress,
	}

	id, err := f.Placer.PlaceOrder(ctx, items, customer)
	if err != nil {
		return nat.Nat{}, fmt.Errorf("placing order of %d lines: %w", len(items), err)
	}

	f.Cart.ClearCart(ctx)
	f.Log.WithFields(logrus.Fields{
		"order_id": id.String(),
		"lines":    len(items),
	}).Info("order placed")

	return id, nil
}

func ConfirmationPath(id nat.Nat) string {
	return "/order-success/" + id.String()
}
