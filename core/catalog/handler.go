package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/irsalhamdi/wholesale-storefront/core/money"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/validate"
)

func HandleList(rd *Reader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ps, err := rd.GetProducts(ctx)
		if err != nil {
			return weberr.Upstream(fmt.Errorf("listing products: %w", err), "unable to load products")
		}

		out := make([]ProductView, 0, len(ps))
		for _, p := range ps {
			out = append(out, NewProductView(p))
		}
		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

func HandleShow(rd *Reader) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "id")
		if err != nil {
			return weberr.NotFound(fmt.Errorf("invalid product id: %w", err))
		}

		p, err := rd.GetProduct(ctx, id)
		switch {
		case errors.Is(err, backend.ErrNotFound):
			return weberr.NotFound(err)
		case err != nil:
			return weberr.Upstream(fmt.Errorf("fetching product[%s]: %w", id, err), "unable to load the product")
		}

		return web.Respond(ctx, w, NewProductView(p), http.StatusOK)
	}
}

func HandleCreate(pa backend.ProductAdmin) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var f ProductForm
		if err := web.Decode(w, r, &f); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		pn, fe := f.Parse()
		if fe != nil {
			return invalidForm(fe)
		}

		id, err := pa.AddProduct(ctx, pn)
		if err != nil {
			return adminFailure(fmt.Errorf("adding product: %w", err), "Failed to add product")
		}

		return web.Respond(ctx, w, struct {
			ID nat.Nat `json:"id"`
		}{id}, http.StatusCreated)
	}
}

func HandleUpdate(pa backend.ProductAdmin) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "id")
		if err != nil {
			return weberr.NotFound(fmt.Errorf("invalid product id: %w", err))
		}

		var f ProductForm
		if err := web.Decode(w, r, &f); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		pn, fe := f.Parse()
		if fe != nil {
			return invalidForm(fe)
		}

		if err := pa.UpdateProduct(ctx, id, pn); err != nil {
			return adminFailure(fmt.Errorf("updating product[%s]: %w", id, err), "Failed to update product")
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(pa backend.ProductAdmin) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "id")
		if err != nil {
			return weberr.NotFound(fmt.Errorf("invalid product id: %w", err))
		}

		if err := pa.DeleteProduct(ctx, id); err != nil {
			return adminFailure(fmt.Errorf("deleting product[%s]: %w", id, err), "Failed to delete product")
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleOrders(or backend.OrderReviewer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orders, err := or.GetAllOrders(ctx)
		if err != nil {
			return adminFailure(fmt.Errorf("listing orders: %w", err), "Failed to load orders")
		}

		out := make([]OrderView, 0, len(orders))
		for _, o := range orders {
			out = append(out, NewOrderView(o))
		}
		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

type Contact struct {
	Phone           string `json:"phone"`
	PhoneLink       string `json:"phoneLink"`
	WhatsAppLink    string `json:"whatsappLink"`
	InstagramHandle string `json:"instagramHandle"`
	InstagramURL    string `json:"instagramUrl"`
	Address         string `json:"address,omitempty"`
}

func NewContact(cfg config.Contact) Contact {
	return Contact{
		Phone:           cfg.Phone,
		PhoneLink:       "tel:" + cfg.Phone,
		WhatsAppLink:    "https://wa.me/" + strings.TrimPrefix(cfg.WhatsApp, "+"),
		InstagramHandle: cfg.InstagramHandle,
		InstagramURL:    cfg.InstagramURL,
		Address:         strings.TrimSpace(cfg.Address),
	}
}

func HandleContact(cfg config.Contact) web.Handler {
	c := NewContact(cfg)
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func invalidForm(fe validate.FieldErrors) error {
	msg := MsgRequired
	if len(fe) == 1 && fe["price"] == money.ErrInvalidPrice.Error() {
		msg = fe["price"]
	}
	return weberr.Invalid(fe, msg, fe)
}

func adminFailure(err error, msg string) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return weberr.NotFound(err)
	case errors.Is(err, backend.ErrUnauthorized):
		return weberr.Forbidden(err)
	case errors.Is(err, backend.ErrInvalid):
		return weberr.NewError(err, msg+": the request was rejected", http.StatusUnprocessableEntity)
	default:
		return weberr.Upstream(err, msg)
	}
}
