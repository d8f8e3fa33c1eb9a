// Package store defines the data access contract. Concrete drivers (sqlite,
// postgres) implement Store; callers only ever see the typed errors below,
// never driver error text.
package store

import (
	"context"
	"errors"

	"github.com/acadshare/acadshare/internal/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// Unique-constraint violations mapped per field, so callers can show a
	// per-field message without matching on driver error strings.
	ErrUsernameTaken = errors.New("store: username already exists")
	ErrEmailTaken    = errors.New("store: email already exists")
	ErrLRNTaken      = errors.New("store: lrn already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Users() Users
	Posts() Posts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Uniqueness violations return ErrUsernameTaken / ErrEmailTaken /
	// ErrLRNTaken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by the password reset flow.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdatePasswordHash sets a freshly hashed password.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Posts interface {
	CreatePost(ctx context.Context, p domain.Post) error

	// GetPostByID returns the post joined with the owner's username.
	GetPostByID(ctx context.Context, id string) (domain.Post, error)

	// GetPostFile returns the stored bytes and MIME type for the named
	// attachment (blob backend downloads).
	GetPostFile(ctx context.Context, filename string) ([]byte, string, error)

	// ListPosts returns every post, newest first, joined with the owner's
	// username.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// ListPostsByUser returns the owner's posts, newest first.
	ListPostsByUser(ctx context.Context, userID string) ([]domain.Post, error)

	// UpdatePost rewrites title, description and attachment columns.
	// Ownership and creation time are immutable.
	UpdatePost(ctx context.Context, p domain.Post) error

	DeletePost(ctx context.Context, id string) error
}
