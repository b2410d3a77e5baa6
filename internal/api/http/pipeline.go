package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/observability"
	"github.com/campuskit/access-service/internal/pipeline"
	apperrors "github.com/campuskit/access-service/pkg/util"
)

const (
	principalKey = "pipeline_principal"
	payloadKey   = "pipeline_payload"
)

// Guarded runs the guard chain for a route and, on success, attaches
// the accumulated context (principal, validated payload) for the
// handler. The principal also travels as x-user-* request headers for
// collaborators that read headers instead of locals.
func Guarded(chain pipeline.Chain, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := &pipeline.Request{
			ClientKey:   c.IP(),
			BearerToken: auth.BearerToken(c.Get(fiber.HeaderAuthorization)),
			Body:        c.Body(),
		}

		out, err := chain.Run(c.UserContext(), req)
		if err != nil {
			domainErr := apperrors.ToDomainError(err)
			switch domainErr.Code {
			case "RATE_LIMIT_EXCEEDED":
				metrics.RecordRateLimitRejection()
			case "AUTHENTICATION_REQUIRED", "INSUFFICIENT_PERMISSIONS", "INVALID_CREDENTIALS", "SELF_ACTION_FORBIDDEN":
				metrics.RecordAuthFailure(domainErr.Code)
			}
			return domainErr
		}

		if out.Principal != nil {
			c.Locals(principalKey, out.Principal)
			c.Request().Header.Set("x-user-id", out.Principal.ID)
			c.Request().Header.Set("x-user-role", string(out.Principal.Role))
			c.Request().Header.Set("x-user-email", out.Principal.Email)
		}
		if out.Payload != nil {
			c.Locals(payloadKey, out.Payload)
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated principal attached
// by the pipeline.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}

// PayloadFromContext retrieves the validated payload attached by the
// pipeline's validation guard.
func PayloadFromContext(c *fiber.Ctx) any {
	return c.Locals(payloadKey)
}
