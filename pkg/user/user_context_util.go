package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

// UserKey is the context key the auth middleware stores the resolved user
// under.
const UserKey contextKey = "user"

// ErrNoUser is returned when a request reaches user-scoped code without an
// authenticated user in its context.
var ErrNoUser = errors.New("user not found")

// CurrentId returns the id of the user stored in ctx, or ErrNoUser.
func CurrentId(ctx context.Context) (int, error) {
	current, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user in request context")
		return 0, ErrNoUser
	}
	return current.Id, nil
}

// CurrentUser returns the full user stored in ctx, or ErrNoUser.
func CurrentUser(ctx context.Context) (User, error) {
	current, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user in request context")
		return User{}, ErrNoUser
	}
	return current, nil
}

// WithUser returns a context carrying the given user for downstream
// handlers and services.
func WithUser(ctx context.Context, current User) context.Context {
	return context.WithValue(ctx, UserKey, current)
}
