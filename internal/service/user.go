// Package service holds the application's business rules, between the web
// handlers and the store.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/pkg/cryptox"
	"github.com/acadshare/acadshare/pkg/idx"
	"github.com/acadshare/acadshare/pkg/slogx"
)

var (
	ErrMissingFields    = errors.New("service: required field missing")
	ErrInvalidLRN       = errors.New("service: lrn must be exactly 12 digits")
	ErrPasswordMismatch = errors.New("service: passwords do not match")

	// ErrInvalidCredentials is deliberately the only failure a login can
	// produce, so responses never reveal whether the username exists.
	ErrInvalidCredentials = errors.New("service: invalid username or password")
)

var lrnPattern = regexp.MustCompile(`^\d{12}$`)

type UserService struct {
	Store store.Store
}

type RegisterParams struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Section         string
	LRN             string
	Password        string
	ConfirmPassword string
}

// Register validates and creates a new account. Validation order: required
// fields, LRN shape, password confirmation, then the insert; uniqueness is
// deferred to the store, which reports the violated field as a typed error.
// Registration is a single insert, so no partial write survives a failure.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	p.LRN = strings.TrimSpace(p.LRN)

	if p.Username == "" || p.Email == "" || p.LRN == "" || p.Password == "" {
		return domain.User{}, ErrMissingFields
	}
	if !lrnPattern.MatchString(p.LRN) {
		return domain.User{}, ErrInvalidLRN
	}
	if p.Password != p.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Section:      strings.TrimSpace(p.Section),
		LRN:          p.LRN,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate looks the user up by username and verifies the password.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdatePassword replaces a user's password after checking the
// confirmation field.
func (s *UserService) UpdatePassword(ctx context.Context, userID, password, confirm string) error {
	if password == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password updated", "user_id", userID)
	return nil
}
