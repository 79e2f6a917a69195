package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pniceshipping/portal/internal/api/middleware"
	"github.com/pniceshipping/portal/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Identity middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - client role requires a non-empty owner id.
func ctxIdentity(c echo.Context) (role, ownerID string, err error) {
	role, _ = c.Get(middleware.CtxRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	ownerID, _ = c.Get(middleware.CtxOwnerID).(string)
	if role == domain.RoleClient && ownerID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "request missing client identity")
	}

	return role, ownerID, nil
}
