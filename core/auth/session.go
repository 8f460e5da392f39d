package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
)

const (
	principalKey = "principal"
	tokenKey     = "id_token"
	stateKey     = "oauth_state"
	nonceKey     = "oauth_nonce"
)

// LoadAndSave loads the scs session around the rest of the chain and commits
// it before the response is written.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			})
			sm.LoadAndSave(next).ServeHTTP(w, r.WithContext(ctx))
			return err
		}
		return h
	}
	return m
}

// Identify puts the session's identity, if any, into the request context.
func Identify(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if id, ok := sessionIdentity(ctx, sm); ok {
				ctx = claims.Set(ctx, id)
				r = r.WithContext(ctx)
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func sessionIdentity(ctx context.Context, sm *scs.SessionManager) (claims.Identity, bool) {
	principal := sm.GetString(ctx, principalKey)
	if principal == "" {
		return claims.Identity{}, false
	}
	return claims.Identity{Principal: principal, Token: sm.GetString(ctx, tokenKey)}, true
}

// SignIn stores id in a fresh session token. Session data such as the cart
// scope is kept.
func SignIn(ctx context.Context, sm *scs.SessionManager, id claims.Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sm.Put(ctx, principalKey, id.Principal)
	sm.Put(ctx, tokenKey, id.Token)
	return nil
}

func SignOut(ctx context.Context, sm *scs.SessionManager) error {
	sm.Remove(ctx, principalKey)
	sm.Remove(ctx, tokenKey)
	if err := sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	return nil
}
