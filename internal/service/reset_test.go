package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

// captureMailer records sends and signals each one, since delivery runs in
// the background.
type captureMailer struct {
	mu    sync.Mutex
	sent  []capturedMail
	ready chan struct{}
}

type capturedMail struct {
	To   string
	Link string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{ready: make(chan struct{}, 8)}
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, resetLink string) error {
	m.mu.Lock()
	m.sent = append(m.sent, capturedMail{To: to, Link: resetLink})
	m.mu.Unlock()
	m.ready <- struct{}{}
	return nil
}

func (m *captureMailer) waitForMail(t *testing.T) capturedMail {
	t.Helper()
	select {
	case <-m.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("no mail sent within deadline")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newResetService(t *testing.T) (*service.ResetService, *service.UserService, *captureMailer) {
	t.Helper()

	users, st := newUserService(t)
	mailer := newCaptureMailer()
	rs := &service.ResetService{
		Store:   st,
		Users:   users,
		Tokens:  &tokenx.ResetIssuer{Secret: []byte("test-secret"), Issuer: "acadshare"},
		Mailer:  mailer,
		BaseURL: "http://localhost:8080/",
	}
	return rs, users, mailer
}

func TestResetRequest(t *testing.T) {
	ctx := context.Background()
	rs, users, mailer := newResetService(t)

	mustRegister(t, users, "alice", "alice@example.com", "100000000001")

	t.Run("known email receives a link", func(t *testing.T) {
		require.NoError(t, rs.Request(ctx, "alice@example.com"))

		m := mailer.waitForMail(t)
		require.Equal(t, "alice@example.com", m.To)
		require.Contains(t, m.Link, "http://localhost:8080/reset_password/")

		token := m.Link[len("http://localhost:8080/reset_password/"):]
		email, err := rs.VerifyToken(token)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", email)
	})

	t.Run("unknown email reports success, sends nothing", func(t *testing.T) {
		before := mailer.count()
		require.NoError(t, rs.Request(ctx, "ghost@example.com"))

		time.Sleep(50 * time.Millisecond)
		require.Equal(t, before, mailer.count())
	})

	t.Run("empty email rejected", func(t *testing.T) {
		require.ErrorIs(t, rs.Request(ctx, "  "), service.ErrMissingFields)
	})
}

func TestResetRedeem(t *testing.T) {
	ctx := context.Background()
	rs, users, _ := newResetService(t)

	mustRegister(t, users, "alice", "alice@example.com", "100000000001")

	t.Run("round trip", func(t *testing.T) {
		token, err := rs.Tokens.Mint("alice@example.com")
		require.NoError(t, err)

		require.NoError(t, rs.Redeem(ctx, token, "newsecret", "newsecret"))

		_, err = users.Authenticate(ctx, "alice", "secret123")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
		_, err = users.Authenticate(ctx, "alice", "newsecret")
		require.NoError(t, err)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		token, err := rs.Tokens.Mint("alice@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, rs.Redeem(ctx, token, "one", "two"), service.ErrPasswordMismatch)
	})

	t.Run("expired token", func(t *testing.T) {
		past := &tokenx.ResetIssuer{
			Secret: rs.Tokens.Secret,
			Issuer: rs.Tokens.Issuer,
			Now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
		}
		token, err := past.Mint("alice@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, rs.Redeem(ctx, token, "x", "x"), tokenx.ErrTokenExpired)
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := rs.Tokens.Mint("alice@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, rs.Redeem(ctx, token+"x", "x", "x"), tokenx.ErrTokenInvalid)
	})

	t.Run("valid token for deleted account", func(t *testing.T) {
		token, err := rs.Tokens.Mint("gone@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, rs.Redeem(ctx, token, "x", "x"), tokenx.ErrTokenInvalid)
	})
}
