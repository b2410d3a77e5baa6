package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuskit/access-service/internal/domain"
)

// Authorization failure taxonomy. These are expected conditions and are
// converted to the HTTP contract at the boundary.
var (
	ErrAuthenticationRequired  = errors.New("authentication required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrSelfActionForbidden     = errors.New("cannot perform this action on your own account")
)

// IdentityStore is the external collaborator the gate resolves
// principals against. Implementations return domain.ErrNotFound for
// lookup misses.
type IdentityStore interface {
	FindByEmailOrID(ctx context.Context, key string) (*domain.User, error)
}

// Gate composes the token service and the permission model to resolve
// the current principal and enforce requirements.
type Gate struct {
	tokens *TokenManager
	store  IdentityStore
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, store IdentityStore) *Gate {
	return &Gate{tokens: tokens, store: store}
}

// Resolve verifies the raw token and loads the identity behind it. Any
// token or lookup miss collapses into ErrAuthenticationRequired so the
// response does not reveal which check failed. The store lookup is the
// single suspension point and honors ctx cancellation.
func (g *Gate) Resolve(ctx context.Context, rawToken string) (*domain.Principal, error) {
	if rawToken == "" {
		return nil, ErrAuthenticationRequired
	}

	claims, err := g.tokens.Parse(rawToken)
	if err != nil {
		return nil, ErrAuthenticationRequired
	}
	if claims.TokenType != TokenTypeSession {
		return nil, ErrAuthenticationRequired
	}

	user, err := g.store.FindByEmailOrID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAuthenticationRequired
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	// The stored role is authoritative over the token claim.
	return domain.PrincipalFor(user), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireRole succeeds iff the principal's role is in the allowed set.
func (g *Gate) RequireRole(principal *domain.Principal, allowed ...domain.Role) error {
	if principal == nil {
		return ErrAuthenticationRequired
	}
	for _, role := range allowed {
		if principal.Role == role {
			return nil
		}
	}
	return ErrInsufficientPermissions
}

// RequirePermission succeeds iff the principal's role holds the
// permission.
func (g *Gate) RequirePermission(principal *domain.Principal, permission domain.Permission) error {
	if principal == nil {
		return ErrAuthenticationRequired
	}
	if !domain.HasPermission(principal.Role, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

// GuardSelfAction rejects privileged operations that target the
// caller's own identity, regardless of held permissions.
func (g *Gate) GuardSelfAction(principal *domain.Principal, targetID string) error {
	if principal == nil {
		return ErrAuthenticationRequired
	}
	if principal.ID == targetID {
		return ErrSelfActionForbidden
	}
	return nil
}
