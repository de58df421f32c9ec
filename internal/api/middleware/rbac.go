package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/eventboard/eventboard/internal/core/policy"
)

// RBAC rejects requests whose principal may not perform action, before the
// handler runs. Services re-check the same policy.
func RBAC(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.Authorize(Principal(c), action); err != nil {
				return err
			}
			return next(c)
		}
	}
}
