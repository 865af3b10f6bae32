package service

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"

	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// AccessService resolves principals against route requirements by loading the
// role/permission graph from the store on every call. A permission revoked
// mid-session denies the very next request.
type AccessService struct {
	roles  ports.RoleRepository
	logger zerolog.Logger
}

func NewAccessService(roles ports.RoleRepository, logger zerolog.Logger) *AccessService {
	return &AccessService{roles: roles, logger: logger}
}

// Authorize evaluates req against the principal's role and its permission
// set. Role and permission checks are conjunctive: both must pass when both
// are present.
func (s *AccessService) Authorize(ctx context.Context, principal *domain.Principal, req domain.Requirement) (domain.Decision, error) {
	if principal == nil || principal.ID == "" {
		return domain.Denied(domain.DenyUnauthenticated), nil
	}
	if principal.RoleName == "" {
		return domain.Denied(domain.DenyNoRole), nil
	}

	if len(req.Roles) > 0 && !slices.Contains(req.Roles, principal.RoleName) {
		return domain.Denied(domain.DenyRoleMismatch), nil
	}

	if len(req.Permissions) > 0 {
		role, err := s.roles.FindByNameWithPermissions(ctx, principal.RoleName)
		if err != nil {
			if errors.Is(err, domain.ErrRoleNotFound) {
				return domain.Denied(domain.DenyNoRole), nil
			}
			return domain.Decision{}, err
		}
		for _, name := range req.Permissions {
			if !role.HasPermission(name) {
				s.logger.Debug().
					Str("role", principal.RoleName).
					Str("permission", name).
					Msg("authorization denied")
				return domain.Denied(domain.DenyMissingPermission), nil
			}
		}
	}

	return domain.Allowed, nil
}
