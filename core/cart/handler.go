package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/money"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/sirupsen/logrus"
)

type LineView struct {
	ProductID         nat.Nat `json:"productId"`
	Quantity          int     `json:"quantity"`
	UnitPriceAtOrder  nat.Nat `json:"unitPriceAtOrder"`
	Subtotal          nat.Nat `json:"subtotal"`
	FormattedSubtotal string  `json:"formattedSubtotal"`
}

type View struct {
	Items          []LineView `json:"items"`
	Total          nat.Nat    `json:"total"`
	FormattedTotal string     `json:"formattedTotal"`
}

func NewView(s *Store) View {
	lines := s.Lines()
	v := View{Items: make([]LineView, 0, len(lines))}
	for _, l := range lines {
		sub := l.Subtotal()
		v.Items = append(v.Items, LineView{
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			UnitPriceAtOrder:  l.UnitPriceAtOrder,
			Subtotal:          sub,
			FormattedSubtotal: money.Format(sub),
		})
	}
	v.Total = s.TotalEstimate()
	v.FormattedTotal = money.Format(v.Total)
	return v
}

func HandleShow(st Storage, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		s := Open(ctx, st, log)
		return web.Respond(ctx, w, NewView(s), http.StatusOK)
	}
}

// HandleCreateItem adds a product at its current catalog price. Repeated adds
// of the same product keep the price captured the first time.
func HandleCreateItem(st Storage, cat backend.Catalog, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if in.ProductID == nil {
			return weberr.BadRequest(errors.New("productId is required"))
		}
		id := *in.ProductID

		p, err := cat.GetProduct(ctx, id)
		switch {
		case errors.Is(err, backend.ErrNotFound):
			return weberr.NotFound(fmt.Errorf("product[%s] not found", id))
		case err != nil:
			return weberr.Upstream(fmt.Errorf("fetching product[%s]: %w", id, err), "unable to load the product, please try again")
		}

		s := Open(ctx, st, log)
		if err := s.AddItem(ctx, p.ID, ClampQuantity(in.Quantity), p.Price); err != nil {
			return weberr.BadRequest(fmt.Errorf("adding product[%s]: %w", p.ID, err))
		}

		return web.Respond(ctx, w, NewView(s), http.StatusOK)
	}
}

func HandleUpdateItem(st Storage, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "product_id")
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid product id: %w", err))
		}

		var in ItemUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		s := Open(ctx, st, log)
		if err := s.UpdateQuantity(ctx, id, ClampQuantity(in.Quantity)); err != nil {
			return weberr.BadRequest(fmt.Errorf("updating product[%s]: %w", id, err))
		}

		return web.Respond(ctx, w, NewView(s), http.StatusOK)
	}
}

func HandleDeleteItem(st Storage, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "product_id")
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid product id: %w", err))
		}

		s := Open(ctx, st, log)
		s.RemoveItem(ctx, id)

		return web.Respond(ctx, w, NewView(s), http.StatusOK)
	}
}

func HandleDelete(st Storage, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		Open(ctx, st, log).ClearCart(ctx)
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
