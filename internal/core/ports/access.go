package ports

import (
	"context"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

// RoleRepository reads and manages the role/permission graph.
// FindByNameWithPermissions must return the role and its permissions from a
// consistent snapshot.
type RoleRepository interface {
	FindByNameWithPermissions(ctx context.Context, name string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	CreateRole(ctx context.Context, name, description string) (*domain.Role, error)
	AttachPermission(ctx context.Context, roleName, permissionName string) error
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	CreatePermission(ctx context.Context, name, description string) (*domain.Permission, error)
}

// AccessService resolves a principal against a route requirement. Decisions
// are computed fresh on every call; nothing is cached across requests.
type AccessService interface {
	Authorize(ctx context.Context, principal *domain.Principal, req domain.Requirement) (domain.Decision, error)
}
