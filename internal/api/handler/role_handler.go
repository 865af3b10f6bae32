package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// RoleHandler exposes role/permission administration. All routes are gated by
// the access resolver (manage_users permission) in the router.
type RoleHandler struct {
	roles ports.RoleRepository
}

func NewRoleHandler(roles ports.RoleRepository) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type createPermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type attachPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// ListRoles handles GET /v1/roles.
func (h *RoleHandler) ListRoles(c echo.Context) error {
	roles, err := h.roles.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

// CreateRole handles POST /v1/roles.
func (h *RoleHandler) CreateRole(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roles.CreateRole(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// AttachPermission handles POST /v1/roles/:name/permissions.
func (h *RoleHandler) AttachPermission(c echo.Context) error {
	var req attachPermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.roles.AttachPermission(c.Request().Context(), c.Param("name"), req.Permission); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "permission attached"})
}

// ListPermissions handles GET /v1/permissions.
func (h *RoleHandler) ListPermissions(c echo.Context) error {
	perms, err := h.roles.ListPermissions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perms)
}

// CreatePermission handles POST /v1/permissions.
func (h *RoleHandler) CreatePermission(c echo.Context) error {
	var req createPermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	perm, err := h.roles.CreatePermission(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, perm)
}
