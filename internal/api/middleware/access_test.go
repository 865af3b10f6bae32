package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

type stubResolver struct {
	decision domain.Decision
	err      error
	lastReq  domain.Requirement
}

func (s *stubResolver) Authorize(_ context.Context, _ *domain.Principal, req domain.Requirement) (domain.Decision, error) {
	s.lastReq = req
	return s.decision, s.err
}

func TestRequire_Allows(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	resolver := &stubResolver{decision: domain.Allowed}
	req := domain.Requirement{Permissions: []string{"add_product"}}

	called := false
	err := Require(resolver, req)(func(echo.Context) error {
		called = true
		return nil
	})(c)

	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if len(resolver.lastReq.Permissions) != 1 || resolver.lastReq.Permissions[0] != "add_product" {
		t.Fatalf("requirement not passed through: %+v", resolver.lastReq)
	}
}

func TestRequire_DeniesUnauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	resolver := &stubResolver{decision: domain.Denied(domain.DenyUnauthenticated)}
	err := Require(resolver, domain.Requirement{})(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequire_DeniesMissingPermission(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	resolver := &stubResolver{decision: domain.Denied(domain.DenyMissingPermission)}
	err := Require(resolver, domain.Requirement{})(func(echo.Context) error { return nil })(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequire_PropagatesResolverError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	boom := errors.New("store down")
	resolver := &stubResolver{err: boom}
	err := Require(resolver, domain.Requirement{})(func(echo.Context) error { return nil })(c)

	if !errors.Is(err, boom) {
		t.Fatalf("expected resolver error propagated, got %v", err)
	}
}
