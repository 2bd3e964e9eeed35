package model

import "time"

// User is the local record of an identity-provider account
type User struct {
	UserID     string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	Username   string    `db:"username" json:"username"`
	Email      string    `db:"email" json:"email"`
	AvatarURL  string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
