package repository

import (
	"context"
	"fmt"

	"coursecatalog/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DLQRepository interface {
	Create(ctx context.Context, message *model.DeadLetterMessage) error
}

type dlqRepository struct {
	pool *pgxpool.Pool
}

func NewDLQRepository(pool *pgxpool.Pool) DLQRepository {
	return &dlqRepository{pool: pool}
}

func (r *dlqRepository) Create(ctx context.Context, message *model.DeadLetterMessage) error {
	if message.Status == "" {
		message.Status = model.DeadLetterStatusPending
	}
	query := `
        INSERT INTO dead_letter_messages (topic, event_key, payload, last_error, status)
        VALUES ($1, $2, $3::jsonb, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, query,
		message.Topic,
		message.EventKey,
		message.Payload,
		message.LastError,
		message.Status,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storing dead letter for %s: %w", message.EventKey, err)
	}
	return nil
}
