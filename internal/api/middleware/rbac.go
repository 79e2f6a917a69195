package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC restricts a route to the given portal roles. It runs after Identity,
// reading the role that middleware stored on the request context, and returns
// the rejection through the central error handler so every 403 shares the
// same envelope.
func RBAC(allowed ...string) echo.MiddlewareFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowedSet[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "role not allowed for this operation")
			}
			return next(c)
		}
	}
}
