package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursecatalog/internal/model"
	"coursecatalog/internal/repository/repotest"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseService(t *testing.T) (CourseService, *repotest.CourseRepo) {
	t.Helper()
	repo := repotest.NewCourseRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	repo.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return NewCourseService(repo, zerolog.Nop()), repo
}

func strPtr(s string) *string { return &s }

func TestCreateAndListNewestFirst(t *testing.T) {
	svc, _ := newCourseService(t)
	ctx := context.Background()

	first, err := svc.CreateCourse(ctx, CourseInput{Title: "Go Basics", Price: decimal.NewFromInt(0)})
	require.NoError(t, err)
	second, err := svc.CreateCourse(ctx, CourseInput{
		Title:  "  Advanced Go ",
		Price:  decimal.RequireFromString("19.99"),
		IsPaid: true,
		Topics: []string{" go ", "", "concurrency"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Go", second.Title)
	assert.Equal(t, []string{"go", "concurrency"}, second.Topics)

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, second.CourseID, courses[0].CourseID)
	assert.Equal(t, first.CourseID, courses[1].CourseID)
}

func TestCreateCourseValidation(t *testing.T) {
	svc, repo := newCourseService(t)
	ctx := context.Background()

	_, err := svc.CreateCourse(ctx, CourseInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidCourse)
	for _, price := range []string{"-1", "19.999", "100000000"} {
		_, err = svc.CreateCourse(ctx, CourseInput{Title: "Go", Price: decimal.RequireFromString(price)})
		assert.ErrorIs(t, err, ErrInvalidCourse, price)
	}
	assert.Equal(t, 0, repo.Len())

	for _, price := range []string{"0", "19.9", "19.990", "99999999.99"} {
		_, err = svc.CreateCourse(ctx, CourseInput{Title: "Go", Price: decimal.RequireFromString(price)})
		assert.NoError(t, err, price)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	svc, _ := newCourseService(t)
	_, err := svc.GetCourseByID(context.Background(), "8c1f4d3e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpdateCourseAppliesOnlyPresentFields(t *testing.T) {
	svc, _ := newCourseService(t)
	ctx := context.Background()
	created, err := svc.CreateCourse(ctx, CourseInput{
		Title:       "Go",
		Description: "intro",
		Price:       decimal.NewFromInt(10),
		IsPaid:      true,
		Topics:      []string{"go"},
	})
	require.NoError(t, err)

	price := decimal.NewFromInt(0)
	paid := false
	updated, err := svc.UpdateCourse(ctx, created.CourseID, model.CoursePatch{Price: &price, IsPaid: &paid})
	require.NoError(t, err)

	assert.Equal(t, "Go", updated.Title)
	assert.Equal(t, "intro", updated.Description)
	assert.True(t, updated.Price.Equal(price))
	assert.False(t, updated.IsPaid)
	assert.Equal(t, []string{"go"}, updated.Topics)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))

	got, err := svc.GetCourseByID(ctx, created.CourseID)
	require.NoError(t, err)
	assert.Equal(t, updated.Price.String(), got.Price.String())
}

func TestUpdateCourseErrors(t *testing.T) {
	svc, _ := newCourseService(t)
	ctx := context.Background()

	_, err := svc.UpdateCourse(ctx, "missing", model.CoursePatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrCourseNotFound)

	created, err := svc.CreateCourse(ctx, CourseInput{Title: "Go"})
	require.NoError(t, err)
	_, err = svc.UpdateCourse(ctx, created.CourseID, model.CoursePatch{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrInvalidCourse)
	tooPrecise := decimal.RequireFromString("9.999")
	_, err = svc.UpdateCourse(ctx, created.CourseID, model.CoursePatch{Price: &tooPrecise})
	assert.ErrorIs(t, err, ErrInvalidCourse)
}

// interleavingRepo runs another edit just before the wrapped update lands.
type interleavingRepo struct {
	*repotest.CourseRepo
	before func()
}

func (r *interleavingRepo) UpdateCourse(ctx context.Context, courseID string, patch model.CoursePatch) (*model.Course, error) {
	if r.before != nil {
		before := r.before
		r.before = nil
		before()
	}
	return r.CourseRepo.UpdateCourse(ctx, courseID, patch)
}

func TestConcurrentPatchesKeepBothFields(t *testing.T) {
	base := repotest.NewCourseRepo()
	repo := &interleavingRepo{CourseRepo: base}
	svc := NewCourseService(repo, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, CourseInput{Title: "Go", Description: "old"})
	require.NoError(t, err)

	repo.before = func() {
		_, err := svc.UpdateCourse(ctx, created.CourseID, model.CoursePatch{Description: strPtr("new")})
		require.NoError(t, err)
	}
	updated, err := svc.UpdateCourse(ctx, created.CourseID, model.CoursePatch{Title: strPtr("Go 2")})
	require.NoError(t, err)
	assert.Equal(t, "Go 2", updated.Title)
	assert.Equal(t, "new", updated.Description)

	stored, err := svc.GetCourseByID(ctx, created.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", stored.Title)
	assert.Equal(t, "new", stored.Description)
}

func TestDeleteCourse(t *testing.T) {
	svc, repo := newCourseService(t)
	ctx := context.Background()
	created, err := svc.CreateCourse(ctx, CourseInput{Title: "Go"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCourse(ctx, created.CourseID))
	assert.Equal(t, 0, repo.Len())
	assert.ErrorIs(t, svc.DeleteCourse(ctx, created.CourseID), ErrCourseNotFound)
}

func TestListCoursesPropagatesStorageError(t *testing.T) {
	svc, repo := newCourseService(t)
	repo.Err = errors.New("connection refused")
	_, err := svc.ListCourses(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}
