package files_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/files"
	"github.com/acadshare/acadshare/internal/store/drivers/sqlite"
	"github.com/acadshare/acadshare/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage, err := files.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	att, err := storage.Save(ctx, "notes.txt", "", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "notes.txt", att.Filename)
	require.NotEmpty(t, att.Path)
	require.Empty(t, att.Content, "disk backend must not carry bytes inline")

	rc, contentType, err := storage.Open(ctx, "notes.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
	require.Contains(t, contentType, "text/plain")
}

func TestDiskStorage_OpenMissing(t *testing.T) {
	t.Parallel()

	storage, err := files.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = storage.Open(context.Background(), "nope.pdf")
	require.ErrorIs(t, err, files.ErrNotFound)
}

func TestDiskStorage_OpenEscapesToBase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	storage, err := files.NewDiskStorage(dir)
	require.NoError(t, err)

	_, err = storage.Save(ctx, "safe.txt", "", []byte("x"))
	require.NoError(t, err)

	// A traversal-looking name resolves to its base inside the upload dir.
	rc, _, err := storage.Open(ctx, "../../safe.txt")
	require.NoError(t, err)
	rc.Close()
}

func TestDiskStorage_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dir := t.TempDir()
	storage, err := files.NewDiskStorage(dir)
	require.NoError(t, err)

	att, err := storage.Save(ctx, "gone.txt", "", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, storage.Remove(ctx, att))
	_, err = os.Stat(filepath.Join(dir, "gone.txt"))
	require.True(t, os.IsNotExist(err))

	// Removing twice is fine; cleanup is best-effort.
	require.NoError(t, storage.Remove(ctx, att))
}

func TestBlobStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	owner := domain.User{
		ID: idx.New().String(), Username: "u", Email: "u@example.com",
		LRN: "100000000001", PasswordHash: "h",
	}
	require.NoError(t, st.Users().CreateUser(ctx, owner))

	storage := files.NewBlobStorage(st)

	att, err := storage.Save(ctx, "paper.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF"), att.Content)
	require.Empty(t, att.Path, "blob backend must not touch the filesystem")

	// The attachment is persisted with the post row, then served from it.
	post := domain.Post{ID: idx.New().String(), UserID: owner.ID, Title: "T", Attachment: &att}
	require.NoError(t, st.Posts().CreatePost(ctx, post))

	rc, contentType, err := storage.Open(ctx, "paper.pdf")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF"), got)
	require.Equal(t, "application/pdf", contentType)

	_, _, err = storage.Open(ctx, "missing.pdf")
	require.ErrorIs(t, err, files.ErrNotFound)
}
