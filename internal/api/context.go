package api

import (
	"context"

	"travelagency/internal/authz"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   authz.Role
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	v := ctx.Value(ctxKeyIdentity)
	if v == nil {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}
