package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/logistics-realtime/internal/domain"
)

// Handshake carries the credential material available when a websocket
// connection is established.
type Handshake struct {
	Token         string // explicit auth field (query parameter)
	Authorization string // Authorization header fallback
}

// Identity is the resolved caller attached to a connection. Set once at
// handshake, immutable for the connection's lifetime.
type Identity struct {
	UserID string
	Role   domain.Role
}

// UserLookup resolves a decoded subject id to a live user record.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// SocketAuthenticator gates websocket connections. No registry mutation or
// room join may happen for a connection before Authenticate succeeds.
type SocketAuthenticator struct {
	tokens *TokenManager
	users  UserLookup
}

// NewSocketAuthenticator constructs the handshake gate.
func NewSocketAuthenticator(tokens *TokenManager, users UserLookup) *SocketAuthenticator {
	return &SocketAuthenticator{tokens: tokens, users: users}
}

// Authenticate extracts and verifies the handshake credential and resolves it
// to an identity. Failures carry the sentinel errors declared in this package
// so callers can report distinguishable rejection reasons.
func (a *SocketAuthenticator) Authenticate(ctx context.Context, hs Handshake) (Identity, error) {
	token := strings.TrimSpace(hs.Token)
	if token == "" {
		token = bearerToken(hs.Authorization)
	}
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		return Identity{}, err
	}

	user, err := a.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("resolve user: %w", err)
	}
	if user.Status != domain.UserStatusActive {
		return Identity{}, ErrUserNotFound
	}

	return Identity{UserID: user.ID, Role: user.Role}, nil
}

// RejectionCode maps an authentication failure to the wire-level reason code
// sent to the client before closing the connection.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "MISSING_TOKEN"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenInvalid):
		return "TOKEN_INVALID"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	}
	return "UNAUTHORIZED"
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
