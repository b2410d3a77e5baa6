package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/access-service/internal/domain"
)

type fakeStore struct {
	users map[string]*domain.User
}

func (s *fakeStore) FindByEmailOrID(_ context.Context, key string) (*domain.User, error) {
	if user, ok := s.users[key]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

func newTestGate(t *testing.T, users ...*domain.User) (*Gate, *TokenManager) {
	t.Helper()
	store := &fakeStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		store.users[u.ID] = u
	}
	tm := NewTokenManager("test-secret", time.Hour, time.Hour)
	return NewGate(tm, store), tm
}

func adminUser() *domain.User {
	return &domain.User{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin, Verified: true}
}

func plainUser() *domain.User {
	return &domain.User{ID: "user-1", Email: "user@example.com", Role: domain.RoleUser}
}

func TestResolveAttachesPrincipal(t *testing.T) {
	gate, tm := newTestGate(t, adminUser())

	token, _, err := tm.Issue("admin-1", "admin@example.com", domain.RoleAdmin, TokenTypeSession)
	require.NoError(t, err)

	principal, err := gate.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", principal.ID)
	assert.Equal(t, "admin@example.com", principal.Email)
	assert.Equal(t, domain.RoleAdmin, principal.Role)
	assert.True(t, principal.Verified)
}

func TestResolveMissingToken(t *testing.T) {
	gate, _ := newTestGate(t)

	_, err := gate.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestResolveExpiredToken(t *testing.T) {
	store := &fakeStore{users: map[string]*domain.User{"user-1": plainUser()}}
	shortLived := NewTokenManager("test-secret", time.Millisecond, time.Millisecond)
	gate := NewGate(shortLived, store)

	token, _, err := shortLived.Issue("user-1", "user@example.com", domain.RoleUser, TokenTypeSession)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = gate.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestResolveIdentityNotFound(t *testing.T) {
	gate, tm := newTestGate(t)

	token, _, err := tm.Issue("ghost", "ghost@example.com", domain.RoleUser, TokenTypeSession)
	require.NoError(t, err)

	_, err = gate.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestResolveRejectsRefreshToken(t *testing.T) {
	gate, tm := newTestGate(t, plainUser())

	token, _, err := tm.Issue("user-1", "user@example.com", domain.RoleUser, TokenTypeRefresh)
	require.NoError(t, err)

	_, err = gate.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestRequireRole(t *testing.T) {
	gate, _ := newTestGate(t)
	principal := &domain.Principal{ID: "u", Role: domain.RoleAgent}

	assert.NoError(t, gate.RequireRole(principal, domain.RoleAgent, domain.RoleAdmin))
	assert.ErrorIs(t, gate.RequireRole(principal, domain.RoleAdmin), ErrInsufficientPermissions)
	assert.ErrorIs(t, gate.RequireRole(nil, domain.RoleAdmin), ErrAuthenticationRequired)
}

func TestRequirePermission(t *testing.T) {
	gate, _ := newTestGate(t)

	admin := &domain.Principal{ID: "a", Role: domain.RoleAdmin}
	user := &domain.Principal{ID: "u", Role: domain.RoleUser}

	assert.NoError(t, gate.RequirePermission(admin, domain.PermManageUsers))
	assert.ErrorIs(t, gate.RequirePermission(user, domain.PermManageUsers), ErrInsufficientPermissions)
	assert.ErrorIs(t, gate.RequirePermission(nil, domain.PermManageUsers), ErrAuthenticationRequired)
}

func TestGuardSelfAction(t *testing.T) {
	gate, _ := newTestGate(t)
	admin := &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}

	// Permission alone does not allow acting on your own account.
	require.NoError(t, gate.RequirePermission(admin, domain.PermManageUsers))
	assert.ErrorIs(t, gate.GuardSelfAction(admin, "admin-1"), ErrSelfActionForbidden)
	assert.NoError(t, gate.GuardSelfAction(admin, "someone-else"))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
}
