package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/access-service/internal/api/dto"
	"github.com/campuskit/access-service/internal/api/http/handlers"
	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/observability"
	"github.com/campuskit/access-service/internal/pipeline"
	"github.com/campuskit/access-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	AdminUsers *handlers.AdminUsersHandler
	Analytics  *handlers.AnalyticsHandler

	Gate     *auth.Gate
	Limiter  *ratelimit.Limiter
	Validate *validator.Validate
	Metrics  *observability.Metrics
}

// NewRequestContext wires the pipeline context accessors for handlers.
func NewRequestContext() handlers.RequestContext {
	return handlers.RequestContext{
		Payload:   PayloadFromContext,
		Principal: PrincipalFromContext,
	}
}

// RegisterRoutes wires HTTP routes. Protected routes run the standard
// guard ordering: rate limit, then authentication, then
// role/permission, then payload validation.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	guarded := func(guards ...pipeline.Guard) fiber.Handler {
		return Guarded(pipeline.Chain(guards), cfg.Metrics)
	}
	rate := pipeline.RateLimit(cfg.Limiter)
	authn := pipeline.Authenticate(cfg.Gate)
	body := func(newTarget func() any) pipeline.Guard {
		return pipeline.ValidateBody(cfg.Validate, newTarget)
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register",
		guarded(rate, body(func() any { return new(dto.RegisterRequest) })),
		cfg.Auth.Register)
	authGroup.Post("/login",
		guarded(rate, body(func() any { return new(dto.LoginRequest) })),
		cfg.Auth.Login)
	authGroup.Post("/admin/login",
		guarded(rate, body(func() any { return new(dto.LoginRequest) })),
		cfg.Auth.AdminLogin)
	authGroup.Post("/refresh",
		guarded(rate, body(func() any { return new(dto.RefreshRequest) })),
		cfg.Auth.Refresh)
	authGroup.Post("/password/reset/request",
		guarded(rate, body(func() any { return new(dto.PasswordResetRequest) })),
		cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm",
		guarded(rate, body(func() any { return new(dto.PasswordResetConfirm) })),
		cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change",
		guarded(rate, authn, body(func() any { return new(dto.ChangePasswordRequest) })),
		cfg.Auth.ChangePassword)

	admin := app.Group("/admin")
	admin.Get("/users/:id",
		guarded(rate, authn, pipeline.RequirePermission(cfg.Gate, domain.PermManageUsers)),
		cfg.AdminUsers.Get)
	admin.Put("/users/:id",
		guarded(rate, authn,
			pipeline.RequirePermission(cfg.Gate, domain.PermManageUsers),
			body(func() any { return new(dto.UpdateUserRequest) })),
		cfg.AdminUsers.Update)
	admin.Delete("/users/:id",
		guarded(rate, authn, pipeline.RequirePermission(cfg.Gate, domain.PermManageUsers)),
		cfg.AdminUsers.Delete)
	admin.Get("/analytics",
		guarded(rate, authn, pipeline.RequirePermission(cfg.Gate, domain.PermViewAnalytics)),
		cfg.Analytics.Overview)
}
