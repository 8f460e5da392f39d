package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/wholesale-storefront/api/middleware"
	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/irsalhamdi/wholesale-storefront/core/auth"
	"github.com/irsalhamdi/wholesale-storefront/core/cart"
	"github.com/irsalhamdi/wholesale-storefront/core/catalog"
	"github.com/irsalhamdi/wholesale-storefront/core/checkout"
	"github.com/irsalhamdi/wholesale-storefront/core/gate"
	"github.com/irsalhamdi/wholesale-storefront/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin       string
	Log              logrus.FieldLogger
	Session          *scs.SessionManager
	Storage          cart.Storage
	Backend          backend.Backend
	Catalog          *catalog.Reader
	Sessions         gate.Sessions
	OrderLimiter     *rate.Limiter
	ClaimLimiter     *rate.Limiter
	Providers        map[string]auth.Provider
	LoginRedirectURL string
	DevLogin         bool
	Contact          config.Contact
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	a.mw = append(a.mw, auth.Identify(cfg.Session))

	admin := gate.RequireAdmin(cfg.Sessions)

	a.Handle(http.MethodGet, "/auth/login/{provider}", auth.HandleOauthLogin(cfg.Session, cfg.Sessions, cfg.Providers))
	a.Handle(http.MethodGet, "/auth/callback/{provider}", auth.HandleOauthCallback(cfg.Session, cfg.Providers, cfg.LoginRedirectURL))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session, cfg.Sessions))
	if cfg.DevLogin {
		a.Handle(http.MethodPost, "/auth/dev-login", auth.HandleDevLogin(cfg.Session))
	}

	a.Handle(http.MethodGet, "/products", catalog.HandleList(cfg.Catalog))
	a.Handle(http.MethodGet, "/products/{id}", catalog.HandleShow(cfg.Catalog))
	a.Handle(http.MethodGet, "/contact", catalog.HandleContact(cfg.Contact))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Storage, cfg.Log))
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.Storage, cfg.Log))
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.Storage, cfg.Catalog, cfg.Log))
	a.Handle(http.MethodPatch, "/cart/items/{product_id}", cart.HandleUpdateItem(cfg.Storage, cfg.Log))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(cfg.Storage, cfg.Log))

	a.Handle(http.MethodPost, "/checkout", checkout.HandleCheckout(cfg.Storage, cfg.Backend, cfg.OrderLimiter, cfg.Log))
	a.Handle(http.MethodGet, "/orders/{id}/confirmation", checkout.HandleConfirmation())

	a.Handle(http.MethodGet, "/admin/status", gate.HandleStatus(cfg.Sessions))
	a.Handle(http.MethodPost, "/admin/claim", gate.HandleClaim(cfg.Sessions, cfg.Backend, cfg.ClaimLimiter))

	a.Handle(http.MethodGet, "/admin/products", catalog.HandleList(cfg.Catalog), admin)
	a.Handle(http.MethodPost, "/admin/products", catalog.HandleCreate(cfg.Backend), admin)
	a.Handle(http.MethodPut, "/admin/products/{id}", catalog.HandleUpdate(cfg.Backend), admin)
	a.Handle(http.MethodDelete, "/admin/products/{id}", catalog.HandleDelete(cfg.Backend), admin)
	a.Handle(http.MethodGet, "/admin/orders", catalog.HandleOrders(cfg.Backend), admin)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
