package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/irsalhamdi/wholesale-storefront/api/web"
	"github.com/irsalhamdi/wholesale-storefront/api/weberr"
	"github.com/irsalhamdi/wholesale-storefront/core/claims"
	"github.com/irsalhamdi/wholesale-storefront/core/gate"
	"github.com/irsalhamdi/wholesale-storefront/random"
)

// HandleOauthLogin starts the authorization code flow. Logging in while
// already signed in drops the old identity first.
func HandleOauthLogin(sm *scs.SessionManager, sessions gate.Sessions, provs map[string]Provider) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		p, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("provider[%s] not configured", name))
		}

		if claims.Lookup(ctx) != nil {
			if err := SignOut(ctx, sm); err != nil {
				return err
			}
			sessions.Forget(ctx)
		}

		state, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth state: %w", err)
		}
		nonce, err := random.StringSecure(32)
		if err != nil {
			return fmt.Errorf("generating oauth nonce: %w", err)
		}
		sm.Put(ctx, stateKey, state)
		sm.Put(ctx, nonceKey, nonce)

		http.Redirect(w, r, p.AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
		return nil
	}
}

func HandleOauthCallback(sm *scs.SessionManager, provs map[string]Provider, redirectURL string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		name := web.Param(r, "provider")
		p, ok := provs[name]
		if !ok {
			return weberr.NotFound(fmt.Errorf("provider[%s] not configured", name))
		}

		q := r.URL.Query()
		state := sm.PopString(ctx, stateKey)
		nonce := sm.PopString(ctx, nonceKey)

		if state == "" || q.Get("state") != state {
			return weberr.BadRequest(errors.New("oauth state mismatch"))
		}
		if e := q.Get("error"); e != "" {
			return weberr.NotAuthorized(fmt.Errorf("provider[%s] refused login: %s", name, e))
		}

		tok, err := p.Exchange(ctx, q.Get("code"))
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("exchanging code with provider[%s]: %w", name, err))
		}

		raw, ok := tok.Extra("id_token").(string)
		if !ok {
			return weberr.NotAuthorized(fmt.Errorf("provider[%s] returned no id token", name))
		}

		idt, err := p.Verifier.Verify(ctx, raw)
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("verifying id token: %w", err))
		}
		if idt.Nonce != nonce {
			return weberr.NotAuthorized(errors.New("id token nonce mismatch"))
		}

		if err := SignIn(ctx, sm, claims.Identity{Principal: idt.Subject, Token: raw}); err != nil {
			return err
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
		return nil
	}
}

func HandleLogout(sm *scs.SessionManager, sessions gate.Sessions) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := SignOut(ctx, sm); err != nil {
			return err
		}
		sessions.Forget(ctx)

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleDevLogin signs in any principal without a provider. It is only
// routed when development login is enabled.
func HandleDevLogin(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			Principal string `json:"principal"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		principal := strings.TrimSpace(in.Principal)
		if principal == "" {
			return weberr.BadRequest(errors.New("principal is required"))
		}

		if err := SignIn(ctx, sm, claims.Identity{Principal: principal, Token: "dev:" + principal}); err != nil {
			return err
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
