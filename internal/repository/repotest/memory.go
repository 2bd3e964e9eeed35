// Package repotest provides in-memory repositories that enforce the same
// constraints as the PostgreSQL schema, for use in tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"coursecatalog/internal/model"
	"coursecatalog/internal/repository"

	"github.com/google/uuid"
)

// CourseRepo is an in-memory repository.CourseRepository.
type CourseRepo struct {
	mu      sync.Mutex
	courses map[string]model.Course
	// Now stamps created_at/updated_at; tests override it to control ordering.
	Now func() time.Time
	// Err, when set, is returned by every call.
	Err error
}

func NewCourseRepo() *CourseRepo {
	return &CourseRepo{courses: map[string]model.Course{}, Now: time.Now}
}

func (r *CourseRepo) ListCourses(_ context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CourseID > out[j].CourseID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CourseRepo) GetCourseByID(_ context.Context, courseID string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.courses[courseID]
	if !ok {
		return nil, nil
	}
	c = cloneCourse(c)
	return &c, nil
}

func (r *CourseRepo) CreateCourse(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	now := r.Now()
	c.CourseID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Topics == nil {
		c.Topics = []string{}
	}
	r.courses[c.CourseID] = cloneCourse(*c)
	return nil
}

func (r *CourseRepo) UpdateCourse(_ context.Context, courseID string, patch model.CoursePatch) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.courses[courseID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.IsPaid != nil {
		c.IsPaid = *patch.IsPaid
	}
	if patch.ImageURL != nil {
		c.ImageURL = *patch.ImageURL
	}
	if patch.Link != nil {
		c.Link = *patch.Link
	}
	if patch.Topics != nil {
		c.Topics = append([]string{}, *patch.Topics...)
	}
	c.UpdatedAt = r.Now()
	r.courses[courseID] = cloneCourse(c)
	out := cloneCourse(c)
	return &out, nil
}

func (r *CourseRepo) DeleteCourse(_ context.Context, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.courses[courseID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.courses, courseID)
	return nil
}

// Len returns the number of stored courses.
func (r *CourseRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.courses)
}

func cloneCourse(c model.Course) model.Course {
	if c.Topics != nil {
		c.Topics = append([]string{}, c.Topics...)
	}
	return c
}

// UserRepo is an in-memory repository.UserRepository with unique
// username and external id constraints.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]model.User // by external id
	// BeforeCreate runs inside CreateUser before constraints are checked,
	// letting tests simulate a concurrent insert.
	BeforeCreate func(u *model.User)
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]model.User{}}
}

// Seed stores u directly, bypassing hooks.
func (r *UserRepo) Seed(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	r.users[u.ExternalID] = u
}

func (r *UserRepo) GetUserByExternalID(_ context.Context, externalID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[externalID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usernameTaken(username), nil
}

func (r *UserRepo) CreateUser(_ context.Context, u *model.User) error {
	if r.BeforeCreate != nil {
		r.BeforeCreate(u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ExternalID]; ok {
		return repository.ErrExternalIDTaken
	}
	if r.usernameTaken(u.Username) {
		return repository.ErrUsernameTaken
	}
	now := time.Now()
	u.UserID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ExternalID] = *u
	return nil
}

func (r *UserRepo) DeleteUserByExternalID(_ context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[externalID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, externalID)
	return nil
}

// Users returns a snapshot of all stored users.
func (r *UserRepo) Users() []model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *UserRepo) usernameTaken(username string) bool {
	for _, u := range r.users {
		if u.Username == username {
			return true
		}
	}
	return false
}

var (
	_ repository.CourseRepository = (*CourseRepo)(nil)
	_ repository.UserRepository   = (*UserRepo)(nil)
)

// DLQRepo is an in-memory repository.DLQRepository.
type DLQRepo struct {
	mu       sync.Mutex
	messages []model.DeadLetterMessage
}

func NewDLQRepo() *DLQRepo {
	return &DLQRepo{}
}

func (r *DLQRepo) Create(_ context.Context, m *model.DeadLetterMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.Status == "" {
		m.Status = model.DeadLetterStatusPending
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.messages = append(r.messages, *m)
	return nil
}

// Messages returns a snapshot of stored dead letters.
func (r *DLQRepo) Messages() []model.DeadLetterMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.DeadLetterMessage{}, r.messages...)
}

var _ repository.DLQRepository = (*DLQRepo)(nil)
