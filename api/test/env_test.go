package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/wholesale-storefront/api"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/config"
	"github.com/irsalhamdi/wholesale-storefront/core/catalog"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/gate"
	"github.com/irsalhamdi/wholesale-storefront/core/nat"
	"github.com/irsalhamdi/wholesale-storefront/rate"
	"github.com/irsalhamdi/wholesale-storefront/storage"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type TestEnv struct {
	*httptest.Server
	Backend  *mockBackend
	Products []nat.Nat
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	mem := backend.NewMemory()
	products := mem.Seed(
		backend.ProductNew{Name: "Basmati Rice 25kg", Price: nat.MustParse("4599"), Description: "sack"},
		backend.ProductNew{Name: "Olive Oil 5L", Price: nat.MustParse("123456"), Description: "tin"},
	)

	mb := &mockBackend{mem: mem}
	bsrv := httptest.NewServer(mb.handle())
	t.Cleanup(bsrv.Close)

	be, err := backend.NewClient(bsrv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	sm := scs.New()
	st, err := storage.NewFile(t.TempDir(), storage.SessionScope(sm))
	if err != nil {
		t.Fatal(err)
	}

	lookup := func(ctx context.Context, id claims.Identity) (bool, error) {
		return be.IsCallerAdmin(ctx)
	}
	reg := gate.NewRegistry(lookup, 5*time.Second, time.Hour, log)
	t.Cleanup(reg.Close)

	orderLimiter := rate.NewLimiter(100, time.Minute, rate.Every(time.Millisecond))
	t.Cleanup(orderLimiter.Close)
	claimLimiter := rate.NewLimiter(100, time.Minute, rate.Every(time.Millisecond))
	t.Cleanup(claimLimiter.Close)

	mux := api.APIMux(api.APIConfig{
		Log:     log,
		Session: sm,
		Storage: st,
		Backend: be,
		Catalog: catalog.NewReader(be, 5*time.Second),
		Sessions: gate.Sessions{
			Registry:  reg,
			Key:       gate.SessionKey(storage.SessionScope(sm)),
			LoginPath: "/admin/login",
			GuardWait: 2 * time.Second,
		},
		OrderLimiter:     orderLimiter,
		ClaimLimiter:     claimLimiter,
		LoginRedirectURL: "/admin/login",
		DevLogin:         true,
		Contact:          config.Contact{Phone: "+15550100", WhatsApp: "15550100"},
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, Backend: mb, Products: products}
}

// Browser returns a client with its own cookie jar, i.e. its own session.
func (env *TestEnv) Browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// Do sends body as JSON and decodes the response into out when given.
func (env *TestEnv) Do(t *testing.T, c *http.Client, method, path string, body, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}

	w, err := c.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("cannot unmarshal %s %s: %v", method, path, err)
		}
	}
	return w.StatusCode
}

func (env *TestEnv) Login(t *testing.T, c *http.Client, principal string) {
	t.Helper()
	if code := env.Do(t, c, http.MethodPost, "/auth/dev-login", map[string]string{"principal": principal}, nil); code != http.StatusNoContent {
		t.Fatalf("login %s: status %d", principal, code)
	}
}
