// Package storage holds the durable areas a session cart can be persisted
// into. Every backend satisfies cart.Storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

var ErrNoScope = errors.New("storage: no scope for request")

// ScopeFunc names the owner of the values stored for the request in ctx.
// Shared backends (redis, postgres, files) key every item by it.
type ScopeFunc func(ctx context.Context) (string, error)

const scopeKey = "storage_scope"

// SessionScope hands every browser session a random, stable scope id kept in
// the session itself.
func SessionScope(sm *scs.SessionManager) ScopeFunc {
	return func(ctx context.Context) (scope string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrNoScope, r)
			}
		}()

		if id := sm.GetString(ctx, scopeKey); id != "" {
			return id, nil
		}
		id := uuid.NewString()
		sm.Put(ctx, scopeKey, id)
		return id, nil
	}
}

// StaticScope is used by tools and tests that own exactly one cart.
func StaticScope(scope string) ScopeFunc {
	return func(context.Context) (string, error) {
		return scope, nil
	}
}
