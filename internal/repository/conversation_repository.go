package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/logistics-realtime/internal/domain"
)

// ConversationRepository resolves chat conversations for the message relay.
type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	Participants(ctx context.Context, conversationID string) ([]string, error)
}

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository returns a Postgres-backed implementation.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	const query = `
        SELECT id, shipment_id, created_at
        FROM conversations WHERE id=$1`

	var conv domain.Conversation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.ShipmentID,
		&conv.CreatedAt,
	); err != nil {
		return nil, err
	}

	participants, err := r.Participants(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.ParticipantIDs = participants
	return &conv, nil
}

func (r *conversationRepository) Participants(ctx context.Context, conversationID string) ([]string, error) {
	const query = `
        SELECT user_id FROM conversation_participants
        WHERE conversation_id=$1 ORDER BY joined_at`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		participants = append(participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, pgx.ErrNoRows
	}
	return participants, nil
}
