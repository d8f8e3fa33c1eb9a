package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/acadshare/acadshare/internal/mail"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/pkg/slogx"
	"github.com/acadshare/acadshare/pkg/tokenx"
)

// mailTimeout bounds the background SMTP send.
const mailTimeout = 30 * time.Second

type ResetService struct {
	Store   store.Store
	Users   *UserService
	Tokens  *tokenx.ResetIssuer
	Mailer  mail.Mailer
	BaseURL string
}

// Request mints a reset token for the account behind email and mails the
// reset link. The outcome is identical whether or not the account exists,
// so the endpoint cannot be used to enumerate registered e-mail addresses.
// The send itself runs in the background; a slow mail server never stalls
// the requesting connection, and failures are logged rather than surfaced.
func (s *ResetService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.Tokens.Mint(user.Email)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.BaseURL, "/") + "/reset_password/" + token

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := s.Mailer.SendPasswordReset(sendCtx, user.Email, link); err != nil {
			log.Error("reset mail send failed", "user_id", user.ID, "err", err)
		}
	}()

	log.Info("reset token issued", "user_id", user.ID)
	return nil
}

// VerifyToken checks a token without consuming anything, for rendering the
// new-password form. Tokens are stateless: valid means signed by us and
// younger than the TTL.
func (s *ResetService) VerifyToken(token string) (string, error) {
	return s.Tokens.Verify(token)
}

// Redeem verifies the token and updates the password it authorizes.
// A token stays redeemable until its window elapses; it is not invalidated
// by a first use.
func (s *ResetService) Redeem(ctx context.Context, token, password, confirm string) error {
	email, err := s.Tokens.Verify(token)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Account vanished since the token was minted.
			return tokenx.ErrTokenInvalid
		}
		return err
	}

	return s.Users.UpdatePassword(ctx, user.ID, password, confirm)
}
