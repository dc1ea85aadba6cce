package handlers

import (
	"context"

	"github.com/contestkit/arena/internal/auth"
)

type contextKey string

// ContextKeyIdentity carries the authenticated contestant.
const ContextKeyIdentity contextKey = "identity"

// IdentityFrom retrieves the authenticated identity from context.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(auth.Identity)
	return id, ok
}
