package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bazarit/marketplace-api/internal/api/handler"
	"github.com/bazarit/marketplace-api/internal/api/middleware"
	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// Dependencies carries the constructed services the router wires to routes.
type Dependencies struct {
	OTPService  ports.OTPService
	AuthService ports.AuthService
	Access      ports.AccessService
	Roles       ports.RoleRepository
	Mongo       *mongo.Database
	Redis       *redis.Client
	Production  bool
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Handlers ---
	otpHandler := handler.NewOTPHandler(deps.OTPService)
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Production)
	roleHandler := handler.NewRoleHandler(deps.Roles)

	authMW := middleware.Auth(deps.AuthService)
	adminMW := middleware.Require(deps.Access, domain.Requirement{
		Permissions: []string{"manage_users"},
	})

	// --- OTP routes ---
	e.POST("/v1/otp/request", otpHandler.Request)
	e.POST("/v1/otp/verify", otpHandler.Verify)

	// --- Auth routes ---
	e.POST("/v1/auth/signup", authHandler.Signup)
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/refresh", authHandler.Refresh)
	e.POST("/v1/auth/logout", authHandler.Logout)

	// --- Role/permission administration ---
	admin := e.Group("/v1", authMW, adminMW)
	admin.GET("/roles", roleHandler.ListRoles)
	admin.POST("/roles", roleHandler.CreateRole)
	admin.POST("/roles/:name/permissions", roleHandler.AttachPermission)
	admin.GET("/permissions", roleHandler.ListPermissions)
	admin.POST("/permissions", roleHandler.CreatePermission)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}
