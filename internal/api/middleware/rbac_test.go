package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pniceshipping/portal/internal/core/domain"
)

func newRoleContext(e *echo.Echo, role string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(CtxRole, role)
	return c
}

func TestRBAC_AllowsListedRole(t *testing.T) {
	e := echo.New()
	c := newRoleContext(e, domain.RoleAdmin)

	called := false
	h := RBAC(domain.RoleAdmin, domain.RoleClient)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
}

func TestRBAC_RejectsUnlistedRole(t *testing.T) {
	e := echo.New()
	c := newRoleContext(e, "guest")

	h := RBAC(domain.RoleAdmin, domain.RoleClient)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	err := h(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
}

func TestRBAC_RejectsMissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := RBAC(domain.RoleAdmin)(func(c echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
}

func TestIdentity_InjectsHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRole, domain.RoleClient)
	req.Header.Set(HeaderOwnerID, " client_9 ")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Identity()(func(c echo.Context) error { return nil })(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := c.Get(CtxRole).(string); got != domain.RoleClient {
		t.Errorf("role = %q", got)
	}
	if got, _ := c.Get(CtxOwnerID).(string); got != "client_9" {
		t.Errorf("owner id must be trimmed, got %q", got)
	}
}

func TestIdentity_MissingRoleHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Identity()(func(c echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
