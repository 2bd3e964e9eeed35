package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Course represents a course in the catalog
type Course struct {
	CourseID    string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	IsPaid      bool            `db:"is_paid" json:"is_paid"`
	ImageURL    string          `db:"image_url" json:"image_url"`
	Link        string          `db:"link" json:"link"`
	Topics      []string        `db:"topics" json:"topics"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CoursePatch is a partial update; nil fields are left untouched.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	IsPaid      *bool
	ImageURL    *string
	Link        *string
	Topics      *[]string
}
