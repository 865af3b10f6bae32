package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

type stubRoleStore struct {
	roles       []domain.Role
	permissions []domain.Permission
	attachErr   error
	attached    [][2]string
}

func (s *stubRoleStore) FindByNameWithPermissions(_ context.Context, name string) (*domain.Role, error) {
	for i := range s.roles {
		if s.roles[i].Name == name {
			return &s.roles[i], nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (s *stubRoleStore) ListRoles(context.Context) ([]domain.Role, error) {
	return s.roles, nil
}

func (s *stubRoleStore) CreateRole(_ context.Context, name, description string) (*domain.Role, error) {
	for _, r := range s.roles {
		if r.Name == name {
			return nil, domain.ErrRoleExists
		}
	}
	role := domain.Role{ID: "r1", Name: name, Description: description, Permissions: []domain.Permission{}}
	s.roles = append(s.roles, role)
	return &role, nil
}

func (s *stubRoleStore) AttachPermission(_ context.Context, roleName, permissionName string) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.attached = append(s.attached, [2]string{roleName, permissionName})
	return nil
}

func (s *stubRoleStore) ListPermissions(context.Context) ([]domain.Permission, error) {
	return s.permissions, nil
}

func (s *stubRoleStore) CreatePermission(_ context.Context, name, description string) (*domain.Permission, error) {
	perm := domain.Permission{ID: "p1", Name: name, Description: description}
	s.permissions = append(s.permissions, perm)
	return &perm, nil
}

func TestRoleHandler_ListRoles(t *testing.T) {
	store := &stubRoleStore{roles: []domain.Role{
		{ID: "r1", Name: domain.RoleAdmin, Permissions: []domain.Permission{{Name: "manage_users"}}},
		{ID: "r2", Name: domain.RoleBuyer, Permissions: []domain.Permission{}},
	}}
	h := NewRoleHandler(store)

	c, rec := newTestContext(t, http.MethodGet, "/v1/roles", "")
	if err := h.ListRoles(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var roles []domain.Role
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(roles) != 2 || roles[0].Name != domain.RoleAdmin {
		t.Fatalf("unexpected roles: %+v", roles)
	}
}

func TestRoleHandler_CreateRole(t *testing.T) {
	store := &stubRoleStore{}
	h := NewRoleHandler(store)

	c, rec := newTestContext(t, http.MethodPost, "/v1/roles",
		`{"name":"moderator","description":"Content moderation"}`)
	if err := h.CreateRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var role domain.Role
	if err := json.Unmarshal(rec.Body.Bytes(), &role); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if role.Name != "moderator" {
		t.Fatalf("unexpected role: %+v", role)
	}
}

func TestRoleHandler_CreateRole_MissingName(t *testing.T) {
	h := NewRoleHandler(&stubRoleStore{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/roles", `{"description":"no name"}`)
	err := h.CreateRole(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRoleHandler_AttachPermission(t *testing.T) {
	store := &stubRoleStore{}
	h := NewRoleHandler(store)

	c, rec := newTestContext(t, http.MethodPost, "/v1/roles/shop_owner/permissions",
		`{"permission":"add_product"}`)
	c.SetParamNames("name")
	c.SetParamValues("shop_owner")

	if err := h.AttachPermission(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.attached) != 1 || store.attached[0] != [2]string{"shop_owner", "add_product"} {
		t.Fatalf("unexpected attach calls: %v", store.attached)
	}
}

func TestRoleHandler_AttachPermission_UnknownRole(t *testing.T) {
	store := &stubRoleStore{attachErr: domain.ErrRoleNotFound}
	h := NewRoleHandler(store)

	c, _ := newTestContext(t, http.MethodPost, "/v1/roles/ghost/permissions",
		`{"permission":"add_product"}`)
	c.SetParamNames("name")
	c.SetParamValues("ghost")

	if err := h.AttachPermission(c); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound passed to the error handler, got %v", err)
	}
}

func TestRoleHandler_CreatePermission(t *testing.T) {
	store := &stubRoleStore{}
	h := NewRoleHandler(store)

	c, rec := newTestContext(t, http.MethodPost, "/v1/permissions",
		`{"name":"manage_orders","description":"Can manage orders"}`)
	if err := h.CreatePermission(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(store.permissions) != 1 || store.permissions[0].Name != "manage_orders" {
		t.Fatalf("permission not stored: %+v", store.permissions)
	}
}
