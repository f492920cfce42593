package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/logistics-realtime/internal/domain"
)

// UserRepository defines persistence access for marketplace accounts. The
// gateway only reads identities and advisorily records presence.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetOnlineStatus(ctx context.Context, id string, online bool, at time.Time) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, role, status, is_online, last_seen_at, created_at, updated_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.IsOnline,
		&user.LastSeenAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetOnlineStatus(ctx context.Context, id string, online bool, at time.Time) error {
	const query = `
        UPDATE users SET is_online=$1, last_seen_at=$2, updated_at=NOW()
        WHERE id=$3`

	_, err := r.pool.Exec(ctx, query, online, at, id)
	return err
}
