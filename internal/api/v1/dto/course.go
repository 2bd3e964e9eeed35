package dto

import (
	"time"

	"coursecatalog/internal/model"

	"github.com/shopspring/decimal"
)

// CourseCreateDTO is used for incoming course creation requests
type CourseCreateDTO struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0,lte=99999999.99"`
	IsPaid      *bool            `json:"is_paid,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Link        *string          `json:"link,omitempty" validate:"omitempty,url"`
	Topics      []string         `json:"topics,omitempty" validate:"omitempty,dive,max=50"`
}

// CourseUpdateDTO is used for incoming course update requests. Absent
// fields are left unchanged.
type CourseUpdateDTO struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0,lte=99999999.99"`
	IsPaid      *bool            `json:"is_paid,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Link        *string          `json:"link,omitempty" validate:"omitempty,url"`
	Topics      *[]string        `json:"topics,omitempty" validate:"omitempty,dive,max=50"`
}

// CourseResponseDTO is returned in API responses for courses
type CourseResponseDTO struct {
	CourseID    string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsPaid      bool            `json:"is_paid"`
	ImageURL    string          `json:"image_url"`
	Link        string          `json:"link"`
	Topics      []string        `json:"topics"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewCourseResponse(c *model.Course) CourseResponseDTO {
	topics := c.Topics
	if topics == nil {
		topics = []string{}
	}
	return CourseResponseDTO{
		CourseID:    c.CourseID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		IsPaid:      c.IsPaid,
		ImageURL:    c.ImageURL,
		Link:        c.Link,
		Topics:      topics,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ImageUploadRequestDTO asks for a presigned course image upload
type ImageUploadRequestDTO struct {
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

type DeleteResponseDTO struct {
	Success bool `json:"success"`
}
