package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/config"
	"github.com/campuskit/access-service/internal/domain"
	"github.com/campuskit/access-service/internal/repository"
	"github.com/campuskit/access-service/internal/security"
	apperrors "github.com/campuskit/access-service/pkg/util"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*domain.User)}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = uuid.NewString()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUsers) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) FindByEmailOrID(ctx context.Context, key string) (*domain.User, error) {
	if user, err := m.GetByID(ctx, key); err == nil {
		return user, nil
	}
	return m.GetByEmail(ctx, key)
}

type memResets struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
}

func newMemResets() *memResets {
	return &memResets{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (m *memResets) Create(_ context.Context, token *repository.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.NewString()
	copied := *token
	m.tokens[token.Token] = &copied
	return nil
}

func (m *memResets) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[tokenStr]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memResets) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.ID == id {
			now := token.CreatedAt
			token.UsedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Emit(_ context.Context, name string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:               "test-secret",
		SessionTokenTTLHours:    1,
		RefreshTokenTTLHours:    2,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
		PasswordMinLength:       8,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *memUsers, *recordingSink) {
	t.Helper()
	users := newMemUsers()
	sink := &recordingSink{}
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: newMemResets(),
		Sink:              sink,
	})
	return svc, users, sink
}

func seedUser(t *testing.T, users *memUsers, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestRegisterSucceeds(t *testing.T) {
	svc, _, sink := newTestAuthService(t)

	user, pair, err := svc.Register(context.Background(), "Ada", "ada@example.com", "Abcdef1!", domain.RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, pair.SessionToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, []string{security.EventRegistrationSucceeded}, sink.names())
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, sink := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "password", domain.RoleUser)
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "WEAK_PASSWORD", domainErr.Code)

	rules, ok := domainErr.Details["rules"].([]string)
	require.True(t, ok)
	assert.Len(t, rules, 3, "uppercase, digit and symbol rules all reported")
	assert.Empty(t, sink.names())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	_, _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "Abcdef1!", domain.RoleUser)
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_IDENTITY", apperrors.ToDomainError(err).Code)
	assert.Equal(t, []string{security.EventRegistrationDuplicate}, sink.names())
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "Abcdef1!", domain.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginSucceeds(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	user, pair, err := svc.Login(context.Background(), "ada@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEmpty(t, pair.SessionToken)
	assert.Equal(t, []string{security.EventLoginSucceeded}, sink.names())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, sink := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "Abcdef1!")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)
	assert.Equal(t, []string{security.EventLoginFailedNotFound}, sink.names())
}

func TestLoginBadPassword(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	_, _, err := svc.Login(context.Background(), "ada@example.com", "wrong-password")
	require.Error(t, err)

	// Same response as unknown email so callers cannot probe for
	// registered addresses, but a distinct audit event.
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)
	assert.Equal(t, []string{security.EventLoginFailedBadPassword}, sink.names())
}

func TestAdminLoginRejectsNonAdmin(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "user@example.com", "Abcdef1!", domain.RoleUser)

	_, _, err := svc.AdminLogin(context.Background(), "user@example.com", "Abcdef1!")
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", domainErr.Code)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, []string{security.EventLoginFailedBadRole}, sink.names())
}

func TestAdminLoginSucceeds(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "admin@example.com", "Abcdef1!", domain.RoleAdmin)

	user, pair, err := svc.AdminLogin(context.Background(), "admin@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotEmpty(t, pair.SessionToken)
	assert.Equal(t, []string{security.EventLoginSucceeded}, sink.names())
}

func TestRefreshExchangesToken(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	_, pair, err := svc.Login(context.Background(), "ada@example.com", "Abcdef1!")
	require.NoError(t, err)

	token, _, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRefreshRejectsSessionToken(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	_, pair, err := svc.Login(context.Background(), "ada@example.com", "Abcdef1!")
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), pair.SessionToken)
	assert.ErrorIs(t, err, auth.ErrAuthenticationRequired)
}

func TestChangePassword(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	user := seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	err := svc.ChangePassword(context.Background(), user.ID, "Abcdef1!", "Ghijkl2@")
	require.NoError(t, err)
	assert.Contains(t, sink.names(), security.EventPasswordChanged)

	_, _, err = svc.Login(context.Background(), "ada@example.com", "Ghijkl2@")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	user := seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "Ghijkl2@")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)
}

func TestChangePasswordWeakReplacement(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	user := seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	err := svc.ChangePassword(context.Background(), user.ID, "Abcdef1!", "weak")
	require.Error(t, err)
	assert.Equal(t, "WEAK_PASSWORD", apperrors.ToDomainError(err).Code)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, sink := newTestAuthService(t)
	seedUser(t, users, "ada@example.com", "Abcdef1!", domain.RoleUser)

	token, err := svc.RequestPasswordReset(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)

	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), token.Token, "Ghijkl2@"))

	_, _, err = svc.Login(context.Background(), "ada@example.com", "Ghijkl2@")
	assert.NoError(t, err)

	names := sink.names()
	assert.Contains(t, names, security.EventPasswordResetRequested)
	assert.Contains(t, names, security.EventPasswordResetConfirmed)

	// Reset tokens are single use.
	err = svc.ConfirmPasswordReset(context.Background(), token.Token, "Mnopqr3#")
	assert.Error(t, err)
}
