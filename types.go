package auth

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
)

// Logger matches the printf-style surface the rest of the package logs
// through. glog satisfies it, as does anything wrapping the stdlib.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Println("[DBG] " + fmt.Sprintf(format, args...))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Println("[INF] " + fmt.Sprintf(format, args...))
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Println("[WRN] " + fmt.Sprintf(format, args...))
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Println("[ERR] " + fmt.Sprintf(format, args...))
}

// UserStore is the slice of persistence the authenticator needs.
// Users (repo_users.go) is the bun-backed implementation.
type UserStore interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmailOrUsername(ctx context.Context, identifier string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Register(ctx context.Context, user *User) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// Authenticator is the application-facing surface of the auth pipeline.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, identifier, password string) (*User, string, error)
	Verify(ctx context.Context, rawToken string) (*User, error)
}

// Config carries the knobs main wires in. Getters rather than fields so
// callers can back it with env, flags, or a struct literal in tests.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetPasswordHashCost() int
	GetCookieSecure() bool
}
