package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Header names the portal gateway sets after authenticating the caller.
// Authentication itself lives upstream; the core trusts these headers the
// way it would trust verified token claims.
const (
	HeaderRole    = "X-User-Role"
	HeaderOwnerID = "X-Client-Id"
)

// Request-context keys written by Identity and read by RBAC and the handlers.
const (
	CtxRole    = "role"
	CtxOwnerID = "owner_id"
)

// Identity extracts the gateway-forwarded identity and injects it into the
// request context for handlers and RBAC.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := strings.TrimSpace(c.Request().Header.Get(HeaderRole))
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity headers")
			}

			c.Set(CtxRole, role)
			c.Set(CtxOwnerID, strings.TrimSpace(c.Request().Header.Get(HeaderOwnerID)))

			return next(c)
		}
	}
}
