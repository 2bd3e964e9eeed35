// Package authz holds the caller identity derived from a session and the
// single policy table consulted by every mutating operation.
package authz

import (
	"context"
	"errors"
)

const RoleAdmin = "admin"

// Action names a mutating operation guarded by the policy.
type Action string

const (
	ActionCreateCourse Action = "course:create"
	ActionEditCourse   Action = "course:edit"
	ActionDeleteCourse Action = "course:delete"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// Principal is the verified caller.
type Principal struct {
	UserID string
	Role   string
}

// Policy maps each action to the role it requires. An empty role means any
// authenticated caller; actions missing from the table are denied.
type Policy map[Action]string

// DefaultPolicy requires the admin role for every course mutation.
func DefaultPolicy() Policy {
	return Policy{
		ActionCreateCourse: RoleAdmin,
		ActionEditCourse:   RoleAdmin,
		ActionDeleteCourse: RoleAdmin,
	}
}

func (p Policy) Authorize(principal *Principal, action Action) error {
	if principal == nil || principal.UserID == "" {
		return ErrUnauthenticated
	}
	required, ok := p[action]
	if !ok {
		return ErrForbidden
	}
	if required != "" && principal.Role != required {
		return ErrForbidden
	}
	return nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by the auth middleware, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
