package auth

import (
	"context"

	"storefront/internal/model"
)

// Level is the access level of a request.
type Level int

const (
	Anonymous Level = iota
	Authenticated
	Admin
)

func (l Level) String() string {
	switch l {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Identity is the resolved caller of one request. The zero value is anonymous.
type Identity struct {
	User   *model.User
	Claims *Claims
}

// Level derives the access level; admin is an authenticated user with the admin flag.
func (i Identity) Level() Level {
	switch {
	case i.User == nil:
		return Anonymous
	case i.User.IsAdmin:
		return Admin
	default:
		return Authenticated
	}
}

// IsAuthenticated reports whether a user is attached.
func (i Identity) IsAuthenticated() bool { return i.User != nil }

// UserID returns the caller's user id, or 0 when anonymous.
func (i Identity) UserID() uint {
	if i.User == nil {
		return 0
	}
	return i.User.ID
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or an anonymous identity.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
