package repository

import (
	"context"
	"errors"
	"fmt"

	"coursecatalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// GetUserByExternalID returns nil, nil when no user is linked to externalID
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// CreateUser returns ErrUsernameTaken or ErrExternalIDTaken on constraint violations
	CreateUser(ctx context.Context, u *model.User) error
	DeleteUserByExternalID(ctx context.Context, externalID string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `SELECT id, external_id, username, email, avatar_url, created_at, updated_at
	          FROM users WHERE external_id = $1`
	var u model.User
	err := r.pool.QueryRow(ctx, query, externalID).
		Scan(&u.UserID, &u.ExternalID, &u.Username, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user by external id %s: %w", externalID, err)
	}
	return &u, nil
}

func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking username %s: %w", username, err)
	}
	return exists, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (external_id, username, email, avatar_url)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, external_id, username, email, avatar_url, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, u.ExternalID, u.Username, u.Email, u.AvatarURL).
		Scan(&u.UserID, &u.ExternalID, &u.Username, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case "users_username_key":
				return ErrUsernameTaken
			case "users_external_id_key":
				return ErrExternalIDTaken
			}
		}
		return fmt.Errorf("creating user %s: %w", u.ExternalID, err)
	}
	return nil
}

func (r *userRepo) DeleteUserByExternalID(ctx context.Context, externalID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", externalID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
