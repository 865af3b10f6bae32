package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

type stubRoleRepo struct {
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *stubRoleRepo) FindByNameWithPermissions(_ context.Context, name string) (*domain.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	clone.Permissions = append([]domain.Permission(nil), role.Permissions...)
	return &clone, nil
}

func (r *stubRoleRepo) ListRoles(_ context.Context) ([]domain.Role, error) { return nil, nil }

func (r *stubRoleRepo) CreateRole(_ context.Context, name, description string) (*domain.Role, error) {
	role := &domain.Role{Name: name, Description: description}
	r.roles[name] = role
	return role, nil
}

func (r *stubRoleRepo) AttachPermission(_ context.Context, roleName, permissionName string) error {
	role, ok := r.roles[roleName]
	if !ok {
		return domain.ErrRoleNotFound
	}
	role.Permissions = append(role.Permissions, domain.Permission{Name: permissionName})
	return nil
}

func (r *stubRoleRepo) ListPermissions(_ context.Context) ([]domain.Permission, error) {
	return nil, nil
}

func (r *stubRoleRepo) CreatePermission(_ context.Context, name, description string) (*domain.Permission, error) {
	return &domain.Permission{Name: name, Description: description}, nil
}

func newAccessFixture(t *testing.T) (*AccessService, *stubRoleRepo) {
	t.Helper()
	repo := newStubRoleRepo()
	if _, err := repo.CreateRole(context.Background(), domain.RoleShopOwner, ""); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	if err := repo.AttachPermission(context.Background(), domain.RoleShopOwner, "add_product"); err != nil {
		t.Fatalf("seed permission: %v", err)
	}
	return NewAccessService(repo, zerolog.Nop()), repo
}

func shopOwner() *domain.Principal {
	return &domain.Principal{ID: "u1", Phone: "+251911000000", RoleName: domain.RoleShopOwner}
}

func TestAccessService_Unauthenticated(t *testing.T) {
	svc, _ := newAccessFixture(t)

	decision, err := svc.Authorize(context.Background(), nil, domain.Requirement{Permissions: []string{"add_product"}})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyUnauthenticated {
		t.Fatalf("expected unauthenticated denial, got %+v", decision)
	}
}

func TestAccessService_NoRole(t *testing.T) {
	svc, _ := newAccessFixture(t)

	principal := &domain.Principal{ID: "u2"}
	decision, err := svc.Authorize(context.Background(), principal, domain.Requirement{Permissions: []string{"add_product"}})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyNoRole {
		t.Fatalf("expected no_role denial, got %+v", decision)
	}
}

func TestAccessService_PermissionAllows(t *testing.T) {
	svc, _ := newAccessFixture(t)

	decision, err := svc.Authorize(context.Background(), shopOwner(), domain.Requirement{Permissions: []string{"add_product"}})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected allow, got %+v", decision)
	}
}

func TestAccessService_MissingPermission(t *testing.T) {
	svc, _ := newAccessFixture(t)

	decision, err := svc.Authorize(context.Background(), shopOwner(), domain.Requirement{Permissions: []string{"manage_users"}})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyMissingPermission {
		t.Fatalf("expected missing_permission denial, got %+v", decision)
	}
}

func TestAccessService_RoleMismatch(t *testing.T) {
	svc, _ := newAccessFixture(t)

	decision, err := svc.Authorize(context.Background(), shopOwner(), domain.Requirement{Roles: []string{domain.RoleAdmin}})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyRoleMismatch {
		t.Fatalf("expected role_mismatch denial, got %+v", decision)
	}
}

func TestAccessService_ConjunctiveChecks(t *testing.T) {
	svc, _ := newAccessFixture(t)

	// Role matches but the permission is missing: AND semantics deny.
	decision, err := svc.Authorize(context.Background(), shopOwner(), domain.Requirement{
		Roles:       []string{domain.RoleShopOwner},
		Permissions: []string{"manage_users"},
	})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyMissingPermission {
		t.Fatalf("expected conjunctive denial, got %+v", decision)
	}

	decision, err = svc.Authorize(context.Background(), shopOwner(), domain.Requirement{
		Roles:       []string{domain.RoleShopOwner},
		Permissions: []string{"add_product"},
	})
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected allow when both checks pass, got %+v", decision)
	}
}

func TestAccessService_RevocationTakesEffectImmediately(t *testing.T) {
	svc, repo := newAccessFixture(t)
	req := domain.Requirement{Permissions: []string{"add_product"}}

	decision, err := svc.Authorize(context.Background(), shopOwner(), req)
	if err != nil || !decision.Allow {
		t.Fatalf("expected initial allow, got %+v err=%v", decision, err)
	}

	// Revoke the permission mid-session; the very next call must deny.
	repo.roles[domain.RoleShopOwner].Permissions = nil

	decision, err = svc.Authorize(context.Background(), shopOwner(), req)
	if err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if decision.Allow || decision.Reason != domain.DenyMissingPermission {
		t.Fatalf("expected denial after revocation, got %+v", decision)
	}
}
