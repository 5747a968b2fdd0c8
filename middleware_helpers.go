package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/skilllink/learnex-auth/middleware/authware"
)

// validatorAdapter bridges the token service into the middleware's narrow
// TokenValidator interface.
type validatorAdapter struct {
	tokens TokenService
}

func (v validatorAdapter) Validate(raw string) (authware.AuthClaims, error) {
	claims, err := v.tokens.Validate(raw)
	if err != nil {
		return authware.AuthClaims{}, err
	}

	return authware.AuthClaims{
		Subject:  claims.Subject,
		UserID:   claims.UserID,
		Expires:  claims.Expires,
		IssuedAt: claims.IssuedAt,
	}, nil
}

// NewProtectedMiddleware builds the route protection middleware wired to
// this package's token service and user store. Mount it after the public
// /api/auth routes; everything registered later requires a session.
func NewProtectedMiddleware(tokens TokenService, store UserStore) fiber.Handler {
	return authware.New(ProtectedMiddlewareConfig(tokens, store))
}

// ProtectedMiddlewareConfig is the authware configuration used by
// NewProtectedMiddleware, exposed so callers can override pieces before
// constructing the handler.
func ProtectedMiddlewareConfig(tokens TokenService, store UserStore) authware.Config {
	return authware.Config{
		Validator: validatorAdapter{tokens: tokens},
		FindUser: func(ctx context.Context, claims authware.AuthClaims) (any, error) {
			user, err := store.GetByID(ctx, claims.UserID)
			if err != nil {
				return nil, ErrNotAuthorized
			}
			return user, nil
		},
		ContextEnricher: func(ctx context.Context, user any) context.Context {
			if u, ok := user.(*User); ok {
				return WithContext(ctx, u)
			}
			return ctx
		},
	}
}
