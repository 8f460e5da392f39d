package gate

import (
	"context"
	"errors"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
)

type RoleAssigner interface {
	AssignCallerUserRole(ctx context.Context, principal string, role claims.Role) error
}

var (
	ErrNotClaimable  = errors.New("admin access can only be claimed by a signed-in non-admin")
	ErrClaimRejected = errors.New("admin claim rejected")
)

// ClaimError carries the backend's reason for rejecting a claim.
type ClaimError struct {
	Err error
}

func (e *ClaimError) Error() string { return ErrClaimRejected.Error() + ": " + e.Err.Error() }

func (e *ClaimError) Unwrap() error { return e.Err }

func (e *ClaimError) Is(target error) bool { return target == ErrClaimRejected }

// Claim asks the backend to make the gate's identity an admin and then
// re-resolves the verdict from a fresh lookup. The verdict is never flipped
// locally.
func Claim(ctx context.Context, g *Gate, ra RoleAssigner) error {
	id := g.Identity()
	if id == nil || g.Verdict().State != NonAdmin {
		return ErrNotClaimable
	}

	ctx = claims.Set(ctx, *id)
	if err := ra.AssignCallerUserRole(ctx, id.Principal, claims.RoleAdmin); err != nil {
		return &ClaimError{Err: err}
	}

	g.RefreshFor(id.Principal)
	return nil
}
