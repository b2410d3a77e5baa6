package service

import (
	"context"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/repository"
	"github.com/campuskit/access-service/internal/security"
	"github.com/campuskit/access-service/pkg/util"
)

// UserService backs the admin user-management endpoints.
type UserService struct {
	users repository.UserRepository
	gate  *auth.Gate
	sink  security.Sink
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, gate *auth.Gate, sink security.Sink) *UserService {
	return &UserService{users: users, gate: gate, sink: sink}
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// UserUpdate carries the mutable admin-editable fields. Nil means
// leave unchanged; id and email are deliberately not updatable here.
type UserUpdate struct {
	Name     *string
	Role     *domain.Role
	Verified *bool
	Status   *domain.UserStatus
}

// Update applies an admin edit to a user.
func (s *UserService) Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFound("user")
		}
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, util.NewValidationError(map[string]any{
				"violations": []map[string]string{{"field": "role", "rule": "unknown role"}},
			})
		}
		user.Role = *update.Role
	}
	if update.Verified != nil {
		user.Verified = *update.Verified
	}
	if update.Status != nil {
		user.Status = *update.Status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. The self-action guard rejects an actor
// deleting their own account even though MANAGE_USERS is held.
func (s *UserService) Delete(ctx context.Context, actor *domain.Principal, id string) error {
	if err := s.gate.GuardSelfAction(actor, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return util.NewNotFound("user")
		}
		return err
	}

	s.sink.Emit(ctx, security.EventUserDeleted, map[string]any{
		"user_id":  id,
		"actor_id": actor.ID,
	})
	return nil
}
