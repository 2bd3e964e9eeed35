package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursecatalog/internal/metrics"
	"coursecatalog/internal/model"
	"coursecatalog/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidCourse  = errors.New("invalid course")
)

// CourseInput carries the fields of a new course.
type CourseInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	IsPaid      bool
	ImageURL    string
	Link        string
	Topics      []string
}

// CourseService defines the interface for course operations
type CourseService interface {
	// ListCourses returns every course, newest first
	ListCourses(ctx context.Context) ([]model.Course, error)
	// GetCourseByID returns ErrCourseNotFound when the course does not exist
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error)
	// UpdateCourse applies only the fields set in patch
	UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch) (*model.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

// courseService is the implementation of CourseService
type courseService struct {
	repo   repository.CourseRepository
	logger zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(repo repository.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:   repo,
		logger: logger.With().Str("service", "CourseService").Logger(),
	}
}

func (s *courseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	c, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

// CreateCourse creates a new course record
func (s *courseService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	c := &model.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		IsPaid:      in.IsPaid,
		ImageURL:    in.ImageURL,
		Link:        in.Link,
		Topics:      normalizeTopics(in.Topics),
	}
	if err := validateCourse(c); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	metrics.CourseMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("course_id", c.CourseID).Str("title", c.Title).Msg("Course created")
	return c, nil
}

// UpdateCourse applies the fields set in patch. Unset fields keep whatever
// value is stored when the write happens.
func (s *courseService) UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch) (*model.Course, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidCourse)
		}
		patch.Title = &title
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.Topics != nil {
		topics := normalizeTopics(*patch.Topics)
		patch.Topics = &topics
	}

	c, err := s.repo.UpdateCourse(ctx, courseID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	metrics.CourseMutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("course_id", c.CourseID).Msg("Course updated")
	return c, nil
}

// DeleteCourse deletes a course by its ID
func (s *courseService) DeleteCourse(ctx context.Context, courseID string) error {
	if err := s.repo.DeleteCourse(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	metrics.CourseMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("course_id", courseID).Msg("Course deleted")
	return nil
}

func validateCourse(c *model.Course) error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidCourse)
	}
	return validatePrice(c.Price)
}

// maxPrice is the largest value a numeric(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// validatePrice rejects what the price column would refuse or round.
func validatePrice(p decimal.Decimal) error {
	switch {
	case p.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidCourse)
	case p.GreaterThan(maxPrice):
		return fmt.Errorf("%w: price must not exceed %s", ErrInvalidCourse, maxPrice)
	case !p.Equal(p.Round(2)):
		return fmt.Errorf("%w: price must have at most two decimal places", ErrInvalidCourse)
	}
	return nil
}

// normalizeTopics trims entries and drops empty ones, keeping order.
func normalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
