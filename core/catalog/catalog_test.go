package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/validate"
)

// slowCatalog blocks every call until release is closed.
type slowCatalog struct {
	backend.Catalog
	calls   int32
	release chan struct{}
}

func (s *slowCatalog) GetProducts(ctx context.Context) ([]backend.Product, error) {
	atomic.AddInt32(&s.calls, 1)
	<-s.release
	return s.Catalog.GetProducts(ctx)
}

func TestReaderCoalescesConcurrentReads(t *testing.T) {
	m := backend.NewMemory()
	m.Seed(backend.ProductNew{Name: "Sugar", Price: nat.FromUint64(100)})
	sc := &slowCatalog{Catalog: m, release: make(chan struct{})}
	rd := NewReader(sc, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps, err := rd.GetProducts(context.Background())
			if err != nil || len(ps) != 1 {
				t.Errorf("unexpected result %v, %v", ps, err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(sc.release)
	wg.Wait()

	if n := atomic.LoadInt32(&sc.calls); n != 1 {
		t.Fatalf("expected one backend call, got %d", n)
	}
}

func TestReaderCallerCancellation(t *testing.T) {
	sc := &slowCatalog{Catalog: backend.NewMemory(), release: make(chan struct{})}
	defer close(sc.release)
	rd := NewReader(sc, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rd.GetProducts(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProductFormParse(t *testing.T) {
	pn, fe := ProductForm{Name: " Oil ", Price: "12.99", Description: "5L"}.Parse()
	if fe != nil {
		t.Fatal(fe)
	}
	if pn.Name != "Oil" || pn.Price.String() != "1299" {
		t.Fatalf("unexpected product %+v", pn)
	}

	_, fe = ProductForm{Price: "abc"}.Parse()
	exp := validate.FieldErrors{
		"name":        "Name is required",
		"description": "Description is required",
	}
	if diff := cmp.Diff(exp, fe); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	_, fe = ProductForm{Name: "a", Price: "0", Description: "b"}.Parse()
	if fe["price"] != "please enter a valid price" {
		t.Fatalf("expected invalid price, got %v", fe)
	}
}

func TestProductView(t *testing.T) {
	pv := NewProductView(backend.Product{ID: nat.FromUint64(1), Price: nat.FromUint64(123456), Image: " "})

	if pv.FormattedPrice != "$1,234.56" {
		t.Fatalf("unexpected price %q", pv.FormattedPrice)
	}
	if !strings.HasSuffix(pv.Image, "product-placeholder.dim_800x800.png") {
		t.Fatalf("expected placeholder image, got %q", pv.Image)
	}
}

func TestAdminHandlers(t *testing.T) {
	m := backend.NewMemory()
	admin := claims.Set(context.Background(), claims.Identity{Principal: "root"})
	_ = m.AssignCallerUserRole(admin, "root", claims.RoleAdmin)

	r := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"name":"Tea","price":"3.50","image":"","description":"box"}`))
	w := httptest.NewRecorder()
	if err := HandleCreate(m)(admin, w, r); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"name":"Tea","price":"3.50","description":"box"}`))
	err := HandleCreate(m)(context.Background(), httptest.NewRecorder(), r)
	if _, status, _ := weberr.Response(err); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}

	r = httptest.NewRequest(http.MethodPut, "/admin/products/1", strings.NewReader(`{"name":"Tea","price":"nope","description":"box"}`))
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	err = HandleUpdate(m)(admin, httptest.NewRecorder(), r)
	body, status, _ := weberr.Response(err)
	if status != http.StatusUnprocessableEntity || body.(*weberr.FieldsResponse).Error != "please enter a valid price" {
		t.Fatalf("expected invalid price, got %d %#v", status, body)
	}

	r = httptest.NewRequest(http.MethodDelete, "/admin/products/1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	if err := HandleDelete(m)(admin, httptest.NewRecorder(), r); err != nil {
		t.Fatal(err)
	}
	if ps, _ := m.GetProducts(context.Background()); len(ps) != 0 {
		t.Fatalf("expected product deleted, got %v", ps)
	}
}

func TestHandleOrders(t *testing.T) {
	m := backend.NewMemory()
	admin := claims.Set(context.Background(), claims.Identity{Principal: "root"})
	_ = m.AssignCallerUserRole(admin, "root", claims.RoleAdmin)
	_, _ = m.PlaceOrder(context.Background(), []backend.OrderItem{
		{ProductID: nat.FromUint64(1), Quantity: nat.FromUint64(3), UnitPriceAtOrder: nat.FromUint64(333)},
	}, backend.CustomerDetails{Name: "Ann"})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	if err := HandleOrders(m)(admin, w, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(w.Body.String(), `"formattedTotal":"$9.99"`) {
		t.Fatalf("unexpected body %s", w.Body)
	}
}

func TestContact(t *testing.T) {
	c := NewContact(config.Contact{Phone: "+15550100", WhatsApp: "+15550100", InstagramHandle: "@shop", InstagramURL: "https://instagram.com/shop"})

	exp := Contact{
		Phone:           "+15550100",
		PhoneLink:       "tel:+15550100",
		WhatsAppLink:    "https://wa.me/15550100",
		InstagramHandle: "@shop",
		InstagramURL:    "https://instagram.com/shop",
	}
	if diff := cmp.Diff(exp, c); diff != "" {
		t.Fatalf("contact mismatch (-want +got):\n%s", diff)
	}
}
