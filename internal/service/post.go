package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/files"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/pkg/idx"
	"github.com/acadshare/acadshare/pkg/slogx"
)

var (
	ErrTitleRequired      = errors.New("service: title is required")
	ErrFileTypeNotAllowed = errors.New("service: file type not allowed")
	ErrNotPostOwner       = errors.New("service: not the post owner")
)

// allowedExtensions is the upload allow-list.
var allowedExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {},
	"pdf": {}, "doc": {}, "docx": {}, "txt": {}, "zip": {},
}

// Upload is a file received with a form submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PostService struct {
	Store store.Store
	Files files.Storage
}

// Create validates and stores a new post. The attachment is optional; when
// present its extension must pass the allow-list and its filename is
// sanitized before use as a storage key. Nothing is written on validation
// failure.
func (s *PostService) Create(ctx context.Context, userID, title, description string, upload *Upload) (domain.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Post{}, ErrTitleRequired
	}

	attachment, err := s.storeUpload(ctx, upload)
	if err != nil {
		return domain.Post{}, err
	}

	post := domain.Post{
		ID:          idx.New().String(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Attachment:  attachment,
	}

	if err := s.Store.Posts().CreatePost(ctx, post); err != nil {
		// The row never landed; drop any bytes already written to disk.
		s.cleanup(ctx, attachment)
		return domain.Post{}, err
	}

	slogx.FromContext(ctx).Info("post created", "post_id", post.ID, "user_id", userID)
	return post, nil
}

// Get returns the post only to its owner.
func (s *PostService) Get(ctx context.Context, userID, postID string) (domain.Post, error) {
	post, err := s.Store.Posts().GetPostByID(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if post.UserID != userID {
		return domain.Post{}, ErrNotPostOwner
	}
	return post, nil
}

// Update rewrites title and description. Without a new upload the stored
// attachment is preserved unchanged; with one the old attachment is replaced
// and its bytes removed best-effort afterwards.
func (s *PostService) Update(ctx context.Context, userID, postID, title, description string, upload *Upload) (domain.Post, error) {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return domain.Post{}, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Post{}, ErrTitleRequired
	}

	replaced := post.Attachment
	attachment, err := s.storeUpload(ctx, upload)
	if err != nil {
		return domain.Post{}, err
	}

	post.Title = title
	post.Description = strings.TrimSpace(description)
	if attachment != nil {
		post.Attachment = attachment
	}

	if err := s.Store.Posts().UpdatePost(ctx, post); err != nil {
		s.cleanup(ctx, attachment)
		return domain.Post{}, err
	}

	// The row now points at the new file; the old one is unreachable.
	if attachment != nil {
		s.cleanup(ctx, replaced)
	}

	slogx.FromContext(ctx).Info("post updated", "post_id", post.ID, "user_id", userID)
	return post, nil
}

// Delete removes the post row, then best-effort removes its stored file.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, userID, postID)
	if err != nil {
		return err
	}

	if err := s.Store.Posts().DeletePost(ctx, postID); err != nil {
		return err
	}
	s.cleanup(ctx, post.Attachment)

	slogx.FromContext(ctx).Info("post deleted", "post_id", postID, "user_id", userID)
	return nil
}

// Feed returns every post, newest first.
func (s *PostService) Feed(ctx context.Context) ([]domain.Post, error) {
	return s.Store.Posts().ListPosts(ctx)
}

// Mine returns the caller's posts, newest first.
func (s *PostService) Mine(ctx context.Context, userID string) ([]domain.Post, error) {
	return s.Store.Posts().ListPostsByUser(ctx, userID)
}

// OpenFile streams a stored attachment for download.
func (s *PostService) OpenFile(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	return s.Files.Open(ctx, filename)
}

// storeUpload validates and persists an optional upload, returning the
// attachment to record on the post row. A nil or empty upload is fine.
func (s *PostService) storeUpload(ctx context.Context, upload *Upload) (*domain.Attachment, error) {
	if upload == nil || upload.Filename == "" {
		return nil, nil
	}

	name := SanitizeFilename(upload.Filename)
	if name == "" || !ExtensionAllowed(name) {
		return nil, ErrFileTypeNotAllowed
	}

	att, err := s.Files.Save(ctx, name, upload.ContentType, upload.Data)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// cleanup removes replaced or orphaned attachment bytes. Failures are
// logged, never surfaced: the user's operation already succeeded or failed
// on its own terms.
func (s *PostService) cleanup(ctx context.Context, att *domain.Attachment) {
	if att == nil {
		return
	}
	if err := s.Files.Remove(ctx, *att); err != nil {
		slogx.FromContext(ctx).Warn("attachment cleanup failed",
			"filename", att.Filename, "err", err)
	}
}

// ExtensionAllowed reports whether the filename carries an allow-listed
// extension. Files without any extension are rejected.
func ExtensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

// SanitizeFilename reduces an uploaded filename to a safe storage key:
// path components (both separators) are stripped and anything outside
// [A-Za-z0-9._-] becomes an underscore. Returns "" when nothing safe
// remains.
func SanitizeFilename(filename string) string {
	// Take the last path component under either separator convention.
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	// Leading dots would hide the file or escape upward; trailing ones are
	// just noise.
	return strings.Trim(b.String(), "._-")
}
