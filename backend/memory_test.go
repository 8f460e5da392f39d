package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

func as(principal string) context.Context {
	return claims.Set(context.Background(), claims.Identity{Principal: principal})
}

func TestMemoryAdminBootstrap(t *testing.T) {
	m := NewMemory()

	if ok, _ := m.IsCallerAdmin(as("alice")); ok {
		t.Fatal("alice should not start as admin")
	}
	if err := m.AssignCallerUserRole(context.Background(), "alice", claims.RoleAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous claim: expected ErrUnauthorized, got %v", err)
	}
	if err := m.AssignCallerUserRole(as("alice"), "alice", claims.RoleAdmin); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if ok, _ := m.IsCallerAdmin(as("alice")); !ok {
		t.Fatal("alice should be admin after claiming")
	}
	if err := m.AssignCallerUserRole(as("bob"), "bob", claims.RoleAdmin); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("second claim: expected ErrAdminExists, got %v", err)
	}
	if err := m.AssignCallerUserRole(as("bob"), "carol", claims.RoleUser); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("assigning others: expected ErrUnauthorized, got %v", err)
	}
	if err := m.AssignCallerUserRole(as("alice"), "bob", claims.RoleAdmin); err != nil {
		t.Fatalf("admin assigning: %v", err)
	}
}

func TestMemoryProductsAndOrders(t *testing.T) {
	m := NewMemory()
	admin := as("root")
	_ = m.AssignCallerUserRole(admin, "root", claims.RoleAdmin)

	if _, err := m.AddProduct(as("guest"), ProductNew{Name: "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	id, err := m.AddProduct(admin, ProductNew{Name: "Rice 25kg", Price: nat.FromUint64(4599), Description: "bag"})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateProduct(admin, id, ProductNew{Name: "Rice 50kg", Price: nat.FromUint64(8999), Description: "bag"}); err != nil {
		t.Fatal(err)
	}
	p, err := m.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Rice 50kg" || p.Price.String() != "8999" {
		t.Fatalf("unexpected product %+v", p)
	}

	oid, err := m.PlaceOrder(context.Background(), []OrderItem{
		{ProductID: id, Quantity: nat.FromUint64(3), UnitPriceAtOrder: nat.FromUint64(333)},
		{ProductID: id, Quantity: nat.FromUint64(1), UnitPriceAtOrder: nat.FromUint64(1)},
	}, CustomerDetails{Name: "Ann"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.PlaceOrder(context.Background(), nil, CustomerDetails{}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty order, got %v", err)
	}

	if _, err := m.GetAllOrders(as("guest")); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	orders, err := m.GetAllOrders(admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || !orders[0].ID.Equal(oid) || orders[0].TotalEstimate.String() != "1000" {
		t.Fatalf("unexpected orders %+v", orders)
	}

	if err := m.DeleteProduct(admin, id); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetProduct(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
