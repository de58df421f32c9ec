package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventboard/eventboard/internal/core/domain"
)

const principalKey = "principal"

// SessionVerifier resolves a bearer token to a principal, or nil.
type SessionVerifier interface {
	VerifySession(token string) *domain.Principal
}

// Session resolves the bearer token, if any, and injects the principal into
// the context. Requests without a valid token continue as anonymous.
func Session(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" {
				if p := verifier.VerifySession(token); p != nil {
					SetPrincipal(c, p)
				}
			}
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Principal(c) == nil {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

// Principal returns the authenticated caller, or nil for anonymous requests.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// SetPrincipal attaches p to the request context.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
