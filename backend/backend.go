// Package backend is the storefront's view of the remote service that owns
// products, orders and role assignment. The caller's identity travels in the
// context (see claims) and is forwarded on every call.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

var (
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrAdminExists  = errors.New("backend: an admin has already been assigned")
	ErrInvalid      = errors.New("backend: invalid request")
)

type Product struct {
	ID          nat.Nat   `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Price       nat.Nat   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductNew struct {
	Name        string  `json:"name"`
	Price       nat.Nat `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

type CustomerDetails struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FullAddress string `json:"fullAddress"`
}

type OrderItem struct {
	ProductID        nat.Nat `json:"productId"`
	Quantity         nat.Nat `json:"quantity"`
	UnitPriceAtOrder nat.Nat `json:"unitPriceAtOrder"`
}

type Order struct {
	ID            nat.Nat         `json:"id"`
	Customer      CustomerDetails `json:"customer"`
	CreatedAt     time.Time       `json:"createdAt"`
	TotalEstimate nat.Nat         `json:"totalEstimate"`
	Items         []OrderItem     `json:"items"`
}

type Catalog interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id nat.Nat) (Product, error)
}

type ProductAdmin interface {
	AddProduct(ctx context.Context, p ProductNew) (nat.Nat, error)
	UpdateProduct(ctx context.Context, id nat.Nat, p ProductNew) error
	DeleteProduct(ctx context.Context, id nat.Nat) error
}

// OrderPlacer is a single atomic remote operation: it either returns an id or
// leaves nothing behind.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, items []OrderItem, customer CustomerDetails) (nat.Nat, error)
}

type OrderReviewer interface {
	GetAllOrders(ctx context.Context) ([]Order, error)
}

type Roles interface {
	IsCallerAdmin(ctx context.Context) (bool, error)
	AssignCallerUserRole(ctx context.Context, principal string, role claims.Role) error
}

type Backend interface {
	Catalog
	ProductAdmin
	OrderPlacer
	OrderReviewer
	Roles
}
