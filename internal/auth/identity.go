package auth

import (
	"context"

	"github.com/tazhibayda/radiostation-service/internal/security"
)

// Identity is the outcome of the optional bearer check: either Identified with
// a claim or Anonymous. Handlers choose their own policy; none deny Anonymous today.
type Identity struct {
	claim *security.AuthClaim
}

func Identified(c security.AuthClaim) Identity { return Identity{claim: &c} }

func Anonymous() Identity { return Identity{} }

func (i Identity) Claim() (security.AuthClaim, bool) {
	if i.claim == nil {
		return security.AuthClaim{}, false
	}
	return *i.claim, true
}

func (i Identity) IsAnonymous() bool { return i.claim == nil }

// Email returns the caller email, or "" for Anonymous.
func (i Identity) Email() string {
	if i.claim == nil {
		return ""
	}
	return i.claim.Email
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns Anonymous when no filter ran.
func IdentityFrom(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}
