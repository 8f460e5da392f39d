package test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/wholesale-storefront/core/cart"
	"github.com/irsalhamdi/wholesale-storefront/core/catalog"
	"github.com/irsalhamdi/wholesale-storefront/core/checkout"
	"github.com/irsalhamdi/wholesale-storefront/core/gate"
)

func TestStorefrontOrder(t *testing.T) {
	env := NewTestEnv(t)
	c := env.Browser(t)
	rice, oil := env.Products[0], env.Products[1]

	var products []catalog.ProductView
	if code := env.Do(t, c, http.MethodGet, "/products", nil, &products); code != http.StatusOK {
		t.Fatalf("listing products: status %d", code)
	}
	if len(products) != 2 || products[1].FormattedPrice != "$1,234.56" {
		t.Fatalf("unexpected products %+v", products)
	}

	var view cart.View
	env.Do(t, c, http.MethodPut, "/cart/items", map[string]any{"productId": oil.String(), "quantity": 1}, &view)
	env.Do(t, c, http.MethodPut, "/cart/items", map[string]any{"productId": rice.String(), "quantity": 2}, &view)
	env.Do(t, c, http.MethodPut, "/cart/items", map[string]any{"productId": oil.String(), "quantity": 2}, &view)
	env.Do(t, c, http.MethodPatch, "/cart/items/"+rice.String(), map[string]any{"quantity": 0}, &view)

	if view.FormattedTotal != "$3,749.67" {
		t.Fatalf("unexpected total %s", view.FormattedTotal)
	}

	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	r, _ := http.NewRequest(http.MethodPost, env.URL+"/checkout", strings.NewReader(`{"name":"","email":"nope","phone":"","fullAddress":"1 Dock Rd"}`))
	w, err := c.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()
	if w.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %s", w.Status)
	}
	if err := json.NewDecoder(w.Body).Decode(&invalid); err != nil {
		t.Fatal(err)
	}
	exp := map[string]string{"name": "Name is required", "email": "Invalid email format", "phone": "Phone is required"}
	if diff := cmp.Diff(exp, invalid.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(env.Backend.received()) != 0 {
		t.Fatal("invalid checkout must not reach the backend")
	}

	details := map[string]string{"name": "Ann", "email": "ann@shop.co", "phone": "555", "fullAddress": "1 Dock Rd"}
	var placed checkout.Placed
	if code := env.Do(t, c, http.MethodPost, "/checkout", details, &placed); code != http.StatusCreated {
		t.Fatalf("checkout: status %d", code)
	}
	if placed.ConfirmationPath != "/order-success/"+placed.OrderID.String() {
		t.Fatalf("unexpected confirmation path %q", placed.ConfirmationPath)
	}

	got := env.Backend.received()
	if len(got) != 1 {
		t.Fatalf("expected one order, got %d", len(got))
	}
	wantItems := `"items":[{"productId":"2","quantity":"3","unitPriceAtOrder":"123456"},{"productId":"1","quantity":"1","unitPriceAtOrder":"4599"}]`
	if !strings.Contains(got[0], wantItems) {
		t.Fatalf("unexpected order body %s", got[0])
	}

	env.Do(t, c, http.MethodGet, "/cart", nil, &view)
	if len(view.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %+v", view.Items)
	}

	var conf checkout.Confirmation
	if code := env.Do(t, c, http.MethodGet, "/orders/"+placed.OrderID.String()+"/confirmation", nil, &conf); code != http.StatusOK {
		t.Fatalf("confirmation: status %d", code)
	}
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	env := NewTestEnv(t)
	a, b := env.Browser(t), env.Browser(t)

	env.Do(t, a, http.MethodPut, "/cart/items", map[string]any{"productId": env.Products[0].String(), "quantity": 1}, nil)

	var view cart.View
	env.Do(t, b, http.MethodGet, "/cart", nil, &view)
	if len(view.Items) != 0 {
		t.Fatalf("session b sees session a's cart: %+v", view.Items)
	}

	env.Do(t, a, http.MethodGet, "/cart", nil, &view)
	if len(view.Items) != 1 {
		t.Fatalf("session a lost its cart: %+v", view.Items)
	}
}

func TestAdminFlow(t *testing.T) {
	env := NewTestEnv(t)
	c := env.Browser(t)

	var panel gate.Panel
	env.Do(t, c, http.MethodGet, "/admin/status", nil, &panel)
	if panel.Action != gate.ActionSignIn {
		t.Fatalf("expected sign-in action, got %+v", panel)
	}
	if code := env.Do(t, c, http.MethodGet, "/admin/orders", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous admin page: expected 401, got %d", code)
	}

	env.Login(t, c, "alice")

	// Cart survives signing in.
	env.Do(t, c, http.MethodPut, "/cart/items", map[string]any{"productId": env.Products[0].String(), "quantity": 1}, nil)

	if code := env.Do(t, c, http.MethodGet, "/admin/orders", nil, nil); code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", code)
	}

	if code := env.Do(t, c, http.MethodPost, "/admin/claim", nil, &panel); code != http.StatusOK {
		t.Fatalf("claim: status %d", code)
	}
	if panel.AdminStatus != "Admin Confirmed" {
		t.Fatalf("expected confirmed admin after claim, got %+v", panel)
	}

	form := map[string]string{"name": "Dates 10kg", "price": "89.90", "image": "", "description": "box"}
	if code := env.Do(t, c, http.MethodPost, "/admin/products", form, nil); code != http.StatusCreated {
		t.Fatalf("add product: status %d", code)
	}

	var orders []catalog.OrderView
	if code := env.Do(t, c, http.MethodGet, "/admin/orders", nil, &orders); code != http.StatusOK {
		t.Fatalf("orders: status %d", code)
	}

	var view cart.View
	env.Do(t, c, http.MethodGet, "/cart", nil, &view)
	if len(view.Items) != 1 {
		t.Fatalf("cart lost across sign-in: %+v", view.Items)
	}

	other := env.Browser(t)
	env.Login(t, other, "bob")
	if code := env.Do(t, other, http.MethodPost, "/admin/claim", nil, nil); code != http.StatusConflict {
		t.Fatalf("second claim: expected 409, got %d", code)
	}

	if code := env.Do(t, c, http.MethodPost, "/auth/logout", nil, nil); code != http.StatusNoContent {
		t.Fatalf("logout: status %d", code)
	}
	env.Do(t, c, http.MethodGet, "/admin/status", nil, &panel)
	if panel.Authenticated {
		t.Fatalf("expected signed out, got %+v", panel)
	}
}
