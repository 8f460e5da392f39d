// Package catalog serves the product listing and the admin screens that
// manage products and review orders.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/money"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/validate"
	"golang.org/x/sync/singleflight"
)

const MsgRequired = "Please fill in all required fields"

type ProductView struct {
	ID             nat.Nat `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Image          string  `json:"image"`
	Price          nat.Nat `json:"price"`
	FormattedPrice string  `json:"formattedPrice"`
}

func NewProductView(p backend.Product) ProductView {
	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          money.ImageURL(p.Image),
		Price:          p.Price,
		FormattedPrice: money.Format(p.Price),
	}
}

// Reader coalesces concurrent identical catalog reads into one backend call.
// It satisfies backend.Catalog.
type Reader struct {
	cat     backend.Catalog
	timeout time.Duration
	group   singleflight.Group
}

var _ backend.Catalog = (*Reader)(nil)

func NewReader(cat backend.Catalog, timeout time.Duration) *Reader {
	return &Reader{cat: cat, timeout: timeout}
}

func (rd *Reader) GetProducts(ctx context.Context) ([]backend.Product, error) {
	v, err := rd.do(ctx, "products", func(ctx context.Context) (interface{}, error) {
		return rd.cat.GetProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]backend.Product), nil
}

func (rd *Reader) GetProduct(ctx context.Context, id nat.Nat) (backend.Product, error) {
	v, err := rd.do(ctx, "product:"+id.String(), func(ctx context.Context) (interface{}, error) {
		return rd.cat.GetProduct(ctx, id)
	})
	if err != nil {
		return backend.Product{}, err
	}
	return v.(backend.Product), nil
}

// do runs fn once per key at a time. The shared call is detached from any
// single caller's cancellation; each caller still stops waiting on its own ctx.
func (rd *Reader) do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := rd.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), rd.timeout)
		defer cancel()
		return fn(ctx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProductForm is the admin product form. Price is typed in dollars.
type ProductForm struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Image       string `json:"image"`
	Description string `json:"description" validate:"required"`
}

var formMessages = map[string]string{
	"name.required":        "Name is required",
	"price.required":       "Price is required",
	"description.required": "Description is required",
}

// Parse checks the form and converts the price to cents.
func (f ProductForm) Parse() (backend.ProductNew, validate.FieldErrors) {
	f = ProductForm{
		Name:        strings.TrimSpace(f.Name),
		Price:       strings.TrimSpace(f.Price),
		Image:       strings.TrimSpace(f.Image),
		Description: strings.TrimSpace(f.Description),
	}

	if fe := validate.CheckFields(f, formMessages); fe != nil {
		return backend.ProductNew{}, fe
	}

	cents, err := money.ParseDollars(f.Price)
	if err != nil {
		return backend.ProductNew{}, validate.FieldErrors{"price": money.ErrInvalidPrice.Error()}
	}

	return backend.ProductNew{
		Name:        f.Name,
		Price:       cents,
		Image:       f.Image,
		Description: f.Description,
	}, nil
}

type ItemView struct {
	ProductID         nat.Nat `json:"productId"`
	Quantity          nat.Nat `json:"quantity"`
	UnitPriceAtOrder  nat.Nat `json:"unitPriceAtOrder"`
	FormattedSubtotal string  `json:"formattedSubtotal"`
}

type OrderView struct {
	ID             nat.Nat                 `json:"id"`
	Customer       backend.CustomerDetails `json:"customer"`
	CreatedAt      time.Time               `json:"createdAt"`
	PlacedAt       string                  `json:"placedAt"`
	TotalEstimate  nat.Nat                 `json:"totalEstimate"`
	FormattedTotal string                  `json:"formattedTotal"`
	Items          []ItemView              `json:"items"`
}

const placedAtLayout = "Jan 2, 2006, 03:04 PM"

func NewOrderView(o backend.Order) OrderView {
	ov := OrderView{
		ID:             o.ID,
		Customer:       o.Customer,
		CreatedAt:      o.CreatedAt,
		PlacedAt:       o.CreatedAt.Format(placedAtLayout),
		TotalEstimate:  o.TotalEstimate,
		FormattedTotal: money.Format(o.TotalEstimate),
		Items:          make([]ItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ov.Items = append(ov.Items, ItemView{
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			UnitPriceAtOrder:  it.UnitPriceAtOrder,
			FormattedSubtotal: money.Format(it.UnitPriceAtOrder.Mul(it.Quantity)),
		})
	}
	return ov
}
