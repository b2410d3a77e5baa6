// Package security defines the audit event contract for the
// authorization layer. Events are emitted fire-and-forget; durability
// belongs to whatever consumes the sink, not to this layer.
package security

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the authorization layer. Names are part of the
// external contract; downstream consumers key off them.
const (
	EventLoginFailedNotFound    = "login-failed-not-found"
	EventLoginFailedBadRole     = "login-failed-bad-role"
	EventLoginFailedBadPassword = "login-failed-bad-password"
	EventLoginSucceeded         = "login-succeeded"
	EventRegistrationDuplicate  = "registration-duplicate-email"
	EventRegistrationSucceeded  = "registration-succeeded"
	EventPasswordChanged        = "password-changed"
	EventPasswordResetRequested = "password-reset-requested"
	EventPasswordResetConfirmed = "password-reset-confirmed"
	EventUserDeleted            = "user-deleted"
	EventInternalError          = "internal-error"
)

// Event is an immutable audit record.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent stamps an event with id and timestamp.
func NewEvent(name string, details map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Sink receives audit events. Implementations must not block the
// request path on downstream failures.
type Sink interface {
	Emit(ctx context.Context, name string, details map[string]any)
}
