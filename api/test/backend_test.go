package test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
)

// mockBackend serves a backend.Memory over the backend HTTP contract and
// records the raw order bodies it receives.
type mockBackend struct {
	mem *backend.Memory

	mu     sync.Mutex
	orders []string
}

func (m *mockBackend) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.orders...)
}

func caller(r *http.Request) context.Context {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if principal := strings.TrimPrefix(tok, "dev:"); principal != tok {
		return claims.Set(r.Context(), claims.Identity{Principal: principal, Token: tok})
	}
	return r.Context()
}

func respond(w http.ResponseWriter, v any, err error, status int) {
	ctx := context.Background()
	switch {
	case errors.Is(err, backend.ErrNotFound):
		web.Respond(ctx, w, map[string]string{"error": "not found"}, http.StatusNotFound)
	case errors.Is(err, backend.ErrUnauthorized):
		web.Respond(ctx, w, map[string]string{"error": "unauthorized"}, http.StatusForbidden)
	case errors.Is(err, backend.ErrAdminExists):
		web.Respond(ctx, w, map[string]string{"error": "admin already assigned"}, http.StatusConflict)
	case errors.Is(err, backend.ErrInvalid):
		web.Respond(ctx, w, map[string]string{"error": err.Error()}, http.StatusBadRequest)
	case err != nil:
		web.Respond(ctx, w, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	default:
		web.Respond(ctx, w, v, status)
	}
}

func (m *mockBackend) handle() http.Handler {
	products := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps, err := m.mem.GetProducts(caller(r))
		respond(w, ps, err, http.StatusOK)
	})

	product := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := nat.Parse(mux.Vars(r)["id"])
		if err != nil {
			respond(w, nil, backend.ErrNotFound, 0)
			return
		}
		p, err := m.mem.GetProduct(caller(r), id)
		respond(w, p, err, http.StatusOK)
	})

	addProduct := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pn backend.ProductNew
		if err := json.NewDecoder(r.Body).Decode(&pn); err != nil {
			respond(w, nil, backend.ErrInvalid, 0)
			return
		}
		id, err := m.mem.AddProduct(caller(r), pn)
		respond(w, map[string]nat.Nat{"id": id}, err, http.StatusCreated)
	})

	placeOrder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.orders = append(m.orders, string(b))
		m.mu.Unlock()

		var in struct {
			Items    []backend.OrderItem     `json:"items"`
			Customer backend.CustomerDetails `json:"customer"`
		}
		if err := json.Unmarshal(b, &in); err != nil {
			respond(w, nil, backend.ErrInvalid, 0)
			return
		}
		id, err := m.mem.PlaceOrder(caller(r), in.Items, in.Customer)
		respond(w, map[string]nat.Nat{"id": id}, err, http.StatusCreated)
	})

	orders := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := m.mem.GetAllOrders(caller(r))
		respond(w, list, err, http.StatusOK)
	})

	isAdmin := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := m.mem.IsCallerAdmin(caller(r))
		respond(w, map[string]bool{"isAdmin": ok}, err, http.StatusOK)
	})

	assign := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Role claims.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond(w, nil, backend.ErrInvalid, 0)
			return
		}
		err := m.mem.AssignCallerUserRole(caller(r), mux.Vars(r)["principal"], in.Role)
		respond(w, nil, err, http.StatusNoContent)
	})

	r := mux.NewRouter()
	r.Handle("/products", products).Methods("GET")
	r.Handle("/products", addProduct).Methods("POST")
	r.Handle("/products/{id}", product).Methods("GET")
	r.Handle("/orders", placeOrder).Methods("POST")
	r.Handle("/orders", orders).Methods("GET")
	r.Handle("/roles/caller/admin", isAdmin).Methods("GET")
	r.Handle("/roles/{principal}", assign).Methods("PUT")
	return r
}
