package dto

import (
	"time"

	"coursecatalog/internal/model"
)

// UserResponseDTO is returned when the webhook creates a user
type UserResponseDTO struct {
	UserID     string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	AvatarURL  string    `json:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewUserResponse(u *model.User) UserResponseDTO {
	return UserResponseDTO{
		UserID:     u.UserID,
		ExternalID: u.ExternalID,
		Username:   u.Username,
		Email:      u.Email,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// MessageResponseDTO acknowledges a webhook event
type MessageResponseDTO struct {
	Message string `json:"message"`
}
