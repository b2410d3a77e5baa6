package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/config"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/repository"
	"github.com/campuskit/access-service/internal/security"
	"github.com/campuskit/access-service/pkg/util"
)

// TokenPair bundles the credentials returned by login flows.
type TokenPair struct {
	SessionToken     string
	SessionExpiresAt time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates registration, login and credential flows.
// Every authentication failure and every successful privileged action
// emits exactly one security event before the response is returned.
type AuthService struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	tokenMgr *auth.TokenManager
	policy   auth.StrengthPolicy
	sink     security.Sink

	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Sink              security.Sink
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTokenTTL(), cfg.RefreshTokenTTL()),
		policy:     auth.StrengthPolicy{MinLength: cfg.PasswordMinLength},
		sink:       deps.Sink,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
	}
}

// Register creates a new account. Only USER and AGENT accounts can be
// self-registered; admins are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, *TokenPair, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAgent {
		return nil, nil, util.NewValidationError(map[string]any{
			"violations": []map[string]string{{"field": "role", "rule": "must be USER or AGENT"}},
		})
	}

	if result := s.policy.ValidateStrength(password); !result.OK {
		return nil, nil, util.NewWeakPassword(result.Errors)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.sink.Emit(ctx, security.EventRegistrationDuplicate, map[string]any{"email": email})
		return nil, nil, util.NewDuplicateIdentity()
	} else if !isNotFound(err) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.sink.Emit(ctx, security.EventRegistrationSucceeded, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
	return user, pair, nil
}

// Login authenticates an account by email and password. The not-found
// and bad-password paths emit distinct events but return the same
// response so callers cannot probe for registered emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.sink.Emit(ctx, security.EventLoginFailedNotFound, map[string]any{"email": email})
			return nil, nil, util.NewInvalidCredentials()
		}
		return nil, nil, err
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		s.sink.Emit(ctx, security.EventLoginFailedBadPassword, map[string]any{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, util.NewInvalidCredentials()
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.sink.Emit(ctx, security.EventLoginSucceeded, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
	return user, pair, nil
}

// AdminLogin is Login plus an ADMIN role gate.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.sink.Emit(ctx, security.EventLoginFailedNotFound, map[string]any{"email": email})
			return nil, nil, util.NewInvalidCredentials()
		}
		return nil, nil, err
	}

	if user.Role != domain.RoleAdmin {
		s.sink.Emit(ctx, security.EventLoginFailedBadRole, map[string]any{
			"user_id": user.ID,
			"email":   email,
			"role":    string(user.Role),
		})
		return nil, nil, util.NewInsufficientPermissions("Admin privileges required")
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		s.sink.Emit(ctx, security.EventLoginFailedBadPassword, map[string]any{
			"user_id": user.ID,
			"email":   email,
		})
		return nil, nil, util.NewInvalidCredentials()
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.sink.Emit(ctx, security.EventLoginSucceeded, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh session token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokenMgr.Parse(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return "", time.Time{}, auth.ErrAuthenticationRequired
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return "", time.Time{}, auth.ErrAuthenticationRequired
		}
		return "", time.Time{}, err
	}

	return s.tokenMgr.Issue(user.ID, user.Email, user.Role, auth.TokenTypeSession)
}

// ChangePassword verifies the current password before rehashing.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.ComparePassword(user.PasswordHash, currentPassword) {
		s.sink.Emit(ctx, security.EventLoginFailedBadPassword, map[string]any{
			"user_id": user.ID,
			"context": "change-password",
		})
		return util.NewInvalidCredentials()
	}

	if result := s.policy.ValidateStrength(newPassword); !result.OK {
		return util.NewWeakPassword(result.Errors)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.sink.Emit(ctx, security.EventPasswordChanged, map[string]any{"user_id": user.ID})
	return nil
}

// RequestPasswordReset persists a single-use reset token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}

	s.sink.Emit(ctx, security.EventPasswordResetRequested, map[string]any{"user_id": user.ID})
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the
// password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return util.NewValidationError(map[string]any{
			"violations": []map[string]string{{"field": "token", "rule": "expired or already used"}},
		})
	}

	if result := s.policy.ValidateStrength(newPassword); !result.OK {
		return util.NewWeakPassword(result.Errors)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return err
	}

	s.sink.Emit(ctx, security.EventPasswordResetConfirmed, map[string]any{"user_id": user.ID})
	return nil
}

// TokenManager exposes the underlying token manager for gate wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issuePair(user *domain.User) (*TokenPair, error) {
	sessionToken, sessionExp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role, auth.TokenTypeSession)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		SessionToken:     sessionToken,
		SessionExpiresAt: sessionExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
