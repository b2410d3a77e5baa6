package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/campuskit/access-service/internal/domain"
)

// TokenType distinguishes session tokens from long-lived refresh tokens.
type TokenType string

const (
	TokenTypeSession TokenType = "session"
	TokenTypeRefresh TokenType = "refresh"
)

// ErrInvalidToken is returned for any verification failure. Malformed,
// badly signed and expired tokens are deliberately indistinguishable to
// callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager handles issuing and validating signed credential tokens.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a manager. The secret must be externally
// supplied; config refuses to start without one.
func NewTokenManager(secret string, sessionTTL, refreshTTL time.Duration) *TokenManager {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), sessionTTL: sessionTTL, refreshTTL: refreshTTL}
}

// Claims describes the signed claim bundle.
type Claims struct {
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TokenType TokenType   `json:"token_type"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token for the subject. TTL depends on the
// token type.
func (tm *TokenManager) Issue(subjectID, email string, role domain.Role, tokenType TokenType) (string, time.Time, error) {
	ttl := tm.sessionTTL
	if tokenType == TokenTypeRefresh {
		ttl = tm.refreshTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates signature and expiry and returns the claims. All
// failure modes collapse into ErrInvalidToken.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
