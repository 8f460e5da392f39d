package claims

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity is the signed-in principal of a session. Token is forwarded to the
// backend so it can authenticate the caller.
type Identity struct {
	Principal string
	Token     string
}

type ctxKey int

const identityKey ctxKey = 1

var ErrNoIdentity = errors.New("identity missing from context")

func Set(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func Get(ctx context.Context) (Identity, error) {
	v, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return v, nil
}

// Lookup returns nil when the request is anonymous.
func Lookup(ctx context.Context) *Identity {
	id, err := Get(ctx)
	if err != nil {
		return nil
	}
	return &id
}

func IsPrincipal(ctx context.Context, principal string) bool {
	id, err := Get(ctx)
	if err != nil {
		return false
	}

	return id.Principal == principal
}
