// Package auth signs shoppers in and out and tells subscribers when the
// session of a client changes.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("email is required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNotSignedIn        = errors.New("not signed in")
)

type Event string

const (
	EventSignedIn    Event = "SIGNED_IN"
	EventSignedOut   Event = "SIGNED_OUT"
	EventUserUpdated Event = "USER_UPDATED"
)

// Session is the signed-in identity of one client.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Listener receives session changes. The session is nil on sign-out.
type Listener func(event Event, session *Session)

// Provider is the authentication backend seen by the application. Sessions are
// keyed by the client session id.
type Provider interface {
	SignUp(ctx context.Context, sid, email, password, fullName string) (*Session, error)
	SignIn(ctx context.Context, sid, email, password string) (*Session, error)
	SignOut(ctx context.Context, sid string) error
	Session(ctx context.Context, sid string) (*Session, error)
	Subscribe(sid string, fn Listener) (unsubscribe func())
}

// UserStore is the account storage behind the provider.
type UserStore interface {
	CreateUser(ctx context.Context, email, fullName, passwordHash string) (*models.User, error)
	GetUserCredentials(ctx context.Context, email string) (*models.User, string, error)
	UpdateUserFullName(ctx context.Context, id, fullName string) (*models.User, error)
}

// DBUsers reads and writes the users table.
type DBUsers struct {
	DB *sql.DB
}

func (u DBUsers) CreateUser(ctx context.Context, email, fullName, passwordHash string) (*models.User, error) {
	return store.CreateUser(ctx, u.DB, email, fullName, passwordHash)
}

func (u DBUsers) GetUserCredentials(ctx context.Context, email string) (*models.User, string, error) {
	return store.GetUserCredentials(ctx, u.DB, email)
}

func (u DBUsers) UpdateUserFullName(ctx context.Context, id, fullName string) (*models.User, error) {
	return store.UpdateUserFullName(ctx, u.DB, id, fullName)
}

func sessionFor(user *models.User) *Session {
	return &Session{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	}
}
