package service_test

import (
	"context"
	"testing"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/files"
	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/internal/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUserService(t *testing.T) (*service.UserService, *sqlite.Store) {
	t.Helper()
	st := newTestStore(t)
	return &service.UserService{Store: st}, st
}

func newPostService(t *testing.T, st *sqlite.Store) *service.PostService {
	t.Helper()

	dir := t.TempDir()
	storage, err := files.NewDiskStorage(dir)
	require.NoError(t, err)

	return &service.PostService{Store: st, Files: storage}
}

func registerParams(username, email, lrn string) service.RegisterParams {
	return service.RegisterParams{
		Username:        username,
		Email:           email,
		FirstName:       "First",
		LastName:        "Last",
		Section:         "Rizal",
		LRN:             lrn,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func mustRegister(t *testing.T, users *service.UserService, username, email, lrn string) domain.User {
	t.Helper()
	u, err := users.Register(context.Background(), registerParams(username, email, lrn))
	require.NoError(t, err)
	return u
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService(t)

	t.Run("missing fields", func(t *testing.T) {
		p := registerParams("", "a@example.com", "123456789012")
		_, err := users.Register(ctx, p)
		require.ErrorIs(t, err, service.ErrMissingFields)
	})

	t.Run("lrn not twelve digits", func(t *testing.T) {
		for _, lrn := range []string{"123", "12345678901234", "12345678901a", "1234-5678-9012"} {
			_, err := users.Register(ctx, registerParams("u", "u@example.com", lrn))
			require.ErrorIs(t, err, service.ErrInvalidLRN, "lrn %q", lrn)
		}
	})

	t.Run("password confirmation", func(t *testing.T) {
		p := registerParams("u", "u@example.com", "123456789012")
		p.ConfirmPassword = "different"
		_, err := users.Register(ctx, p)
		require.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("password never stored in clear", func(t *testing.T) {
		u := mustRegister(t, users, "hasheduser", "h@example.com", "223456789012")
		require.NotEqual(t, "secret123", u.PasswordHash)
		require.Contains(t, u.PasswordHash, "$argon2id$")
	})
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	users, st := newUserService(t)

	mustRegister(t, users, "alice", "alice@example.com", "100000000001")

	_, err := users.Register(ctx, registerParams("alice", "new@example.com", "100000000002"))
	require.ErrorIs(t, err, store.ErrUsernameTaken)

	_, err = users.Register(ctx, registerParams("bob", "alice@example.com", "100000000003"))
	require.ErrorIs(t, err, store.ErrEmailTaken)

	_, err = users.Register(ctx, registerParams("carol", "carol@example.com", "100000000001"))
	require.ErrorIs(t, err, store.ErrLRNTaken)

	// Exactly one row holds the identity.
	u, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService(t)

	mustRegister(t, users, "alice", "alice@example.com", "100000000001")

	t.Run("success", func(t *testing.T) {
		u, err := users.Authenticate(ctx, "alice", "secret123")
		require.NoError(t, err)
		require.Equal(t, "alice", u.Username)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		_, errWrongPass := users.Authenticate(ctx, "alice", "wrong")
		_, errNoUser := users.Authenticate(ctx, "nobody", "secret123")

		require.ErrorIs(t, errWrongPass, service.ErrInvalidCredentials)
		require.ErrorIs(t, errNoUser, service.ErrInvalidCredentials)
		require.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService(t)

	u := mustRegister(t, users, "alice", "alice@example.com", "100000000001")

	require.ErrorIs(t, users.UpdatePassword(ctx, u.ID, "new", "other"), service.ErrPasswordMismatch)
	require.ErrorIs(t, users.UpdatePassword(ctx, u.ID, "", ""), service.ErrMissingFields)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, "newsecret", "newsecret"))

	_, err := users.Authenticate(ctx, "alice", "secret123")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "alice", "newsecret")
	require.NoError(t, err)
}
