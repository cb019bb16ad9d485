package service

import (
	"context"

	"translation-api/internal/domain"
)

type authUserKey struct{}

// WithUser adjunta la identidad autenticada al contexto de la petición.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, authUserKey{}, user)
}

func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(authUserKey{}).(domain.User)
	return user, ok
}
