package auth

import (
	"context"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"storefront/internal/errors"
	"storefront/internal/model"
)

// SessionCookie carries the access token for the web form boundary.
const SessionCookie = "session"

const claimsContextKey = "session_claims"

// Guard returns nil when the identity may proceed, or the rejection reason.
type Guard func(id Identity) error

// Require passes identities at or above min.
func Require(min Level) Guard {
	return func(id Identity) error {
		if id.Level() >= min {
			return nil
		}
		if !id.IsAuthenticated() {
			return errors.ErrUnauthorized
		}
		return errors.ErrForbidden
	}
}

// All passes only when every guard passes; the first rejection wins.
func All(guards ...Guard) Guard {
	return func(id Identity) error {
		for _, g := range guards {
			if err := g(id); err != nil {
				return err
			}
		}
		return nil
	}
}

// Gate runs guard against the request identity before the handler and calls
// reject instead of the handler when the guard refuses.
func Gate(guard Guard, reject func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := guard(IdentityFrom(c.Request().Context())); err != nil {
				return reject(c, err)
			}
			return next(c)
		}
	}
}

// TokenMiddleware extracts an access token from the Authorization header or
// the session cookie. Requests without a valid token continue anonymously.
func TokenMiddleware(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + SessionCookie,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// UserLookup loads the user behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

// ResolveIdentity turns validated claims into an Identity stored in the
// request context. Revoked tokens and vanished users resolve to anonymous.
func ResolveIdentity(users UserLookup, tokens TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			var id Identity
			if claims, ok := c.Get(claimsContextKey).(*Claims); ok && claims != nil {
				id = resolve(ctx, users, tokens, claims)
			}

			c.SetRequest(req.WithContext(WithIdentity(ctx, id)))
			return next(c)
		}
	}
}

func resolve(ctx context.Context, users UserLookup, tokens TokenStoreInterface, claims *Claims) Identity {
	if revoked, _ := tokens.IsAccessTokenBlacklisted(ctx, claims.ID); revoked {
		return Identity{}
	}
	user, err := users.GetUser(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, errors.ErrUserNotFound) {
			log.Warn().Err(err).Uint("user_id", claims.UserID).Msg("resolve identity")
		}
		return Identity{}
	}
	return Identity{User: user, Claims: claims}
}
