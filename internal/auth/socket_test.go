package auth

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/logistics-realtime/internal/domain"
)

const testSecret = "test-secret"

type fakeUserLookup struct {
	users map[string]*domain.User
}

func (f *fakeUserLookup) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func newTestAuthenticator(users ...*domain.User) *SocketAuthenticator {
	lookup := &fakeUserLookup{users: make(map[string]*domain.User)}
	for _, u := range users {
		lookup.users[u.ID] = u
	}
	return NewSocketAuthenticator(NewTokenManager(testSecret, 60), lookup)
}

func activeUser(id string, role domain.Role) *domain.User {
	return &domain.User{ID: id, Role: role, Status: domain.UserStatusActive}
}

func signToken(t *testing.T, subjectID string, role domain.Role, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuthenticateSuccess(t *testing.T) {
	a := newTestAuthenticator(activeUser("user-1", domain.RoleProvider))
	token, _, err := NewTokenManager(testSecret, 60).GenerateToken("user-1", domain.RoleProvider)
	require.NoError(t, err)

	identity, err := a.Authenticate(context.Background(), Handshake{Token: token})
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, domain.RoleProvider, identity.Role)
}

func TestAuthenticateBearerHeaderFallback(t *testing.T) {
	a := newTestAuthenticator(activeUser("user-1", domain.RoleUser))
	token, _, err := NewTokenManager(testSecret, 60).GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	identity, err := a.Authenticate(context.Background(), Handshake{Authorization: "Bearer " + token})
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
}

func TestAuthenticateMissingToken(t *testing.T) {
	a := newTestAuthenticator()

	_, err := a.Authenticate(context.Background(), Handshake{})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, "MISSING_TOKEN", RejectionCode(err))
}

func TestExpiredTokenDistinguishedFromInvalid(t *testing.T) {
	a := newTestAuthenticator(activeUser("user-1", domain.RoleUser))

	expired := signToken(t, "user-1", domain.RoleUser, time.Now().Add(-time.Minute))
	_, err := a.Authenticate(context.Background(), Handshake{Token: expired})
	require.ErrorIs(t, err, ErrTokenExpired)

	_, invalidErr := a.Authenticate(context.Background(), Handshake{Token: "not-a-jwt"})
	require.ErrorIs(t, invalidErr, ErrTokenInvalid)

	// The client-facing reason codes must differ.
	assert.NotEqual(t, RejectionCode(err), RejectionCode(invalidErr))
	assert.Equal(t, "TOKEN_EXPIRED", RejectionCode(err))
	assert.Equal(t, "TOKEN_INVALID", RejectionCode(invalidErr))
}

func TestAuthenticateWrongSignature(t *testing.T) {
	a := newTestAuthenticator(activeUser("user-1", domain.RoleUser))
	forged, _, err := NewTokenManager("other-secret", 60).GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, authErr := a.Authenticate(context.Background(), Handshake{Token: forged})
	require.ErrorIs(t, authErr, ErrTokenInvalid)
}

func TestAuthenticateUserNotFound(t *testing.T) {
	a := newTestAuthenticator()
	token, _, err := NewTokenManager(testSecret, 60).GenerateToken("ghost", domain.RoleUser)
	require.NoError(t, err)

	_, authErr := a.Authenticate(context.Background(), Handshake{Token: token})
	require.ErrorIs(t, authErr, ErrUserNotFound)
	assert.Equal(t, "USER_NOT_FOUND", RejectionCode(authErr))
}

func TestAuthenticateSuspendedUserRejected(t *testing.T) {
	suspended := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusSuspended}
	a := newTestAuthenticator(suspended)
	token, _, err := NewTokenManager(testSecret, 60).GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	_, authErr := a.Authenticate(context.Background(), Handshake{Token: token})
	require.ErrorIs(t, authErr, ErrUserNotFound)
}
