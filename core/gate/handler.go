package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/backend"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/rate"
)

// SessionKey identifies the browser session of the request in ctx.
type SessionKey func(ctx context.Context) (string, error)

// GuardResponse is the body of a request turned away from an admin page.
type GuardResponse struct {
	Error       string `json:"error"`
	LoginPath   string `json:"loginPath,omitempty"`
	CatalogPath string `json:"catalogPath,omitempty"`
}

type Sessions struct {
	Registry  *Registry
	Key       SessionKey
	LoginPath string
	GuardWait time.Duration
}

// Current returns the session's gate synced with the identity in ctx.
func (s Sessions) Current(ctx context.Context) (*Gate, error) {
	key, err := s.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving session key: %w", err)
	}
	return s.Registry.Sync(key, claims.Lookup(ctx)), nil
}

// Forget drops the session's gate, used on logout.
func (s Sessions) Forget(ctx context.Context) {
	if key, err := s.Key(ctx); err == nil {
		s.Registry.Forget(key)
	}
}

func (s Sessions) wait(ctx context.Context, g *Gate) Verdict {
	ctx, cancel := context.WithTimeout(ctx, s.GuardWait)
	defer cancel()

	v, _ := g.Wait(ctx)
	return v
}

// HandleStatus reports the admin login panel without waiting for a pending
// lookup.
func HandleStatus(s Sessions) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		g, err := s.Current(ctx)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, LoginPanel(g.Verdict()), http.StatusOK)
	}
}

func HandleClaim(s Sessions, ra RoleAssigner, lim *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if !lim.Check(rate.Key(r)) {
			return weberr.TooManyRequests(errors.New("admin claim rate exceeded"))
		}

		g, err := s.Current(ctx)
		if err != nil {
			return err
		}

		// Claiming only makes sense against a settled verdict.
		s.wait(ctx, g)

		err = Claim(ctx, g, ra)
		switch {
		case errors.Is(err, ErrNotClaimable):
			return weberr.NewError(err, "Admin access can only be claimed after sign-in by a non-admin", http.StatusConflict)
		case errors.Is(err, backend.ErrAdminExists):
			return weberr.NewError(err, "An admin has already been assigned", http.StatusConflict)
		case errors.Is(err, backend.ErrUnauthorized):
			return weberr.Forbidden(err)
		case err != nil:
			return weberr.Upstream(err, "Unable to claim admin access, please try again")
		}

		return web.Respond(ctx, w, LoginPanel(s.wait(ctx, g)), http.StatusOK)
	}
}

// RequireAdmin guards admin content. It waits up to GuardWait for a pending lookup
// and then lets only confirmed admins through.
func RequireAdmin(s Sessions) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			g, err := s.Current(ctx)
			if err != nil {
				return err
			}

			v := s.wait(ctx, g)
			switch Guard(v) {
			case ViewLoading:
				return weberr.Unavailable(errors.New("admin status still resolving"), "Checking permissions...", 1)
			case ViewAuthRequired:
				return denied(http.StatusUnauthorized, GuardResponse{
					Error:       "You must be logged in as an administrator to access this page.",
					LoginPath:   s.LoginPath,
					CatalogPath: "/",
				})
			case ViewAccessDenied:
				return denied(http.StatusForbidden, GuardResponse{
					Error:       "You do not have administrator privileges. Only admins can access this page.",
					LoginPath:   s.LoginPath,
					CatalogPath: "/",
				})
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func denied(status int, body GuardResponse) error {
	err := &weberr.RequestError{Err: fmt.Errorf("admin guard: %s", http.StatusText(status))}
	return weberr.Wrap(err, weberr.WithResponse(body, status))
}
