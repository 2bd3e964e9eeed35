package repository

import (
	"context"
	"errors"
	"fmt"

	"coursecatalog/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	// ListCourses returns every course, newest first
	ListCourses(ctx context.Context) ([]model.Course, error)
	// GetCourseByID returns nil, nil when no course has the given ID
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	CreateCourse(ctx context.Context, c *model.Course) error
	// UpdateCourse writes only the fields set in patch and returns the
	// resulting row, or ErrNotFound
	UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch) (*model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

type courseRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool, logger zerolog.Logger) CourseRepository {
	return &courseRepo{pool: pool, logger: logger.With().Str("repository", "courses").Logger()}
}

const courseColumns = `id, title, description, price, is_paid, image_url, link, topics, created_at, updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(
		&c.CourseID,
		&c.Title,
		&c.Description,
		&c.Price,
		&c.IsPaid,
		&c.ImageURL,
		&c.Link,
		&c.Topics,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *courseRepo) ListCourses(ctx context.Context) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating course rows: %w", err)
	}
	return courses, nil
}

func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	var c model.Course
	if err := scanCourse(r.pool.QueryRow(ctx, query, courseID), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting course by id %s: %w", courseID, err)
	}
	return &c, nil
}

// CreateCourse inserts a new course and fills in the generated fields
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (title, description, price, is_paid, image_url, link, topics)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + courseColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Description, c.Price, c.IsPaid, c.ImageURL, c.Link, topicsOrEmpty(c.Topics))
	if err := scanCourse(row, c); err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	r.logger.Debug().Str("course_id", c.CourseID).Msg("course created")
	return nil
}

// UpdateCourse applies patch in a single statement, so concurrent patches
// touching different fields do not overwrite each other
func (r *courseRepo) UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch) (*model.Course, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, ErrNotFound
	}
	query := `
		UPDATE courses
		SET title       = COALESCE($1, title),
		    description = COALESCE($2, description),
		    price       = COALESCE($3::numeric, price),
		    is_paid     = COALESCE($4, is_paid),
		    image_url   = COALESCE($5, image_url),
		    link        = COALESCE($6, link),
		    topics      = COALESCE($7::text[], topics),
		    updated_at  = NOW()
		WHERE id = $8
		RETURNING ` + courseColumns
	var topics *[]string
	if patch.Topics != nil {
		t := topicsOrEmpty(*patch.Topics)
		topics = &t
	}
	var c model.Course
	row := r.pool.QueryRow(ctx, query,
		patch.Title, patch.Description, patch.Price, patch.IsPaid, patch.ImageURL, patch.Link, topics, courseID)
	if err := scanCourse(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating course %s: %w", courseID, err)
	}
	return &c, nil
}

func (r *courseRepo) DeleteCourse(ctx context.Context, courseID string) error {
	if _, err := uuid.Parse(courseID); err != nil {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("deleting course %s: %w", courseID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func topicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}
