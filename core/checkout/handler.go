package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/cart"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/rate"
	"github.com/irsalhamdi/wholesale-storefront/validate"
	"github.com/sirupsen/logrus"
)

type Placed struct {
	OrderID          nat.Nat `json:"orderId"`
	ConfirmationPath string  `json:"confirmationPath"`
}

type Confirmation struct {
	OrderID      nat.Nat `json:"orderId"`
	Message      string  `json:"message"`
	Followup     string  `json:"followup"`
	ContinuePath string  `json:"continuePath"`
}

func HandleCheckout(st cart.Storage, placer backend.OrderPlacer, lim *rate.Limiter, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if !lim.Check(rate.Key(r)) {
			return weberr.TooManyRequests(errors.New("order placement rate exceeded"))
		}

		var d CustomerDetails
		if err := web.Decode(w, r, &d); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		flow := Flow{
			Cart:   cart.Open(ctx, st, log),
			Placer: placer,
			Log:    log,
		}

		id, err := flow.Submit(ctx, d)
		if err != nil {
			var fe validate.FieldErrors
			if errors.As(err, &fe) {
				msg := MsgFixFields
				if len(fe) == 1 && fe["cart"] != "" {
					msg = MsgEmptyCart
				}
				return weberr.Invalid(err, msg, fe, weberr.WithFields(fe.Fields()))
			}
			return weberr.Upstream(err, "Failed to place order: "+userMessage(err))
		}

		out := Placed{
			OrderID:          id,
			ConfirmationPath: ConfirmationPath(id),
		}
		return web.Respond(ctx, w, out, http.StatusCreated)
	}
}

func HandleConfirmation() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamNat(r, "id")
		if err != nil {
			return weberr.NotFound(fmt.Errorf("invalid order id: %w", err))
		}

		out := Confirmation{
			OrderID:      id,
			Message:      "Thank you for your order. Your order has been received and is being processed.",
			Followup:     "We'll contact you soon with further details about your order.",
			ContinuePath: "/",
		}
		return web.Respond(ctx, w, out, http.StatusOK)
	}
}

func userMessage(err error) string {
	var re *backend.RemoteError
	switch {
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	case errors.Is(err, backend.ErrInvalid):
		return "the order was rejected"
	default:
		return "please try again"
	}
}
