package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/api/metrics"
	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// Require evaluates the route's typed requirement against the resolver on
// every request. Nothing is cached: a permission revoked mid-session denies
// the next request that needs it.
func Require(resolver ports.AccessService, req domain.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, err := resolver.Authorize(c.Request().Context(), PrincipalFrom(c), req)
			if err != nil {
				return err
			}

			if !decision.Allow {
				metrics.AuthzDecisionsTotal.WithLabelValues("deny", string(decision.Reason)).Inc()
				if decision.Reason == domain.DenyUnauthenticated {
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
				}
				return echo.NewHTTPError(http.StatusForbidden, denyMessage(decision.Reason))
			}

			metrics.AuthzDecisionsTotal.WithLabelValues("allow", "").Inc()
			return next(c)
		}
	}
}

func denyMessage(reason domain.DenyReason) string {
	switch reason {
	case domain.DenyNoRole:
		return "no role assigned"
	case domain.DenyRoleMismatch:
		return "insufficient role"
	case domain.DenyMissingPermission:
		return "missing required permission"
	default:
		return "forbidden"
	}
}
