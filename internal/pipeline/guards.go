package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/ratelimit"
	"github.com/campuskit/access-service/pkg/util"
)

// RateLimit admits or rejects the request against the fixed-window
// limiter keyed by the client key.
func RateLimit(limiter *ratelimit.Limiter) Guard {
	return func(_ context.Context, req *Request) (*Request, error) {
		key := req.ClientKey
		if key == "" {
			key = "unknown"
		}
		if decision := limiter.Allow(key); !decision.Allowed {
			return nil, util.NewRateLimitExceeded()
		}
		return req, nil
	}
}

// Authenticate resolves the bearer token into a principal and attaches
// it to the request snapshot.
func Authenticate(gate *auth.Gate) Guard {
	return func(ctx context.Context, req *Request) (*Request, error) {
		principal, err := gate.Resolve(ctx, req.BearerToken)
		if err != nil {
			return nil, err
		}
		return req.WithPrincipal(principal), nil
	}
}

// RequireRole passes only principals holding one of the allowed roles.
// Must run after Authenticate.
func RequireRole(gate *auth.Gate, allowed ...domain.Role) Guard {
	return func(_ context.Context, req *Request) (*Request, error) {
		if err := gate.RequireRole(req.Principal, allowed...); err != nil {
			return nil, err
		}
		return req, nil
	}
}

// RequirePermission passes only principals whose role holds the
// permission. Must run after Authenticate.
func RequirePermission(gate *auth.Gate, permission domain.Permission) Guard {
	return func(_ context.Context, req *Request) (*Request, error) {
		if err := gate.RequirePermission(req.Principal, permission); err != nil {
			return nil, err
		}
		return req, nil
	}
}

// ValidateBody decodes the request body into a fresh target and schema
// checks it. Rule violations are collected and reported together, one
// entry per violated field, rather than failing on the first.
func ValidateBody(validate *validator.Validate, newTarget func() any) Guard {
	return func(_ context.Context, req *Request) (*Request, error) {
		target := newTarget()

		if len(req.Body) == 0 {
			return nil, util.NewValidationError(map[string]any{
				"violations": []map[string]string{{"field": "body", "rule": "required"}},
			})
		}
		if err := json.Unmarshal(req.Body, target); err != nil {
			return nil, util.NewValidationError(map[string]any{
				"violations": []map[string]string{{"field": "body", "rule": "invalid JSON"}},
			})
		}

		if err := validate.Struct(target); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return nil, util.NewInternalError(err)
			}
			violations := make([]map[string]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				violations = append(violations, map[string]string{
					"field": strings.ToLower(fe.Field()),
					"rule":  fe.Tag(),
				})
			}
			return nil, util.NewValidationError(map[string]any{"violations": violations})
		}

		return req.WithPayload(target), nil
	}
}
