package files

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/store"
)

// BlobStorage keeps attachment bytes inline in the posts row. Save only
// shapes the attachment; the store persists it with the post insert/update,
// so the write stays atomic with the row.
type BlobStorage struct {
	store store.Store
}

func NewBlobStorage(st store.Store) *BlobStorage {
	return &BlobStorage{store: st}
}

func (b *BlobStorage) Save(_ context.Context, filename, contentType string, data []byte) (domain.Attachment, error) {
	return domain.Attachment{
		Filename:    filename,
		ContentType: detectContentType(filename, contentType),
		Content:     data,
	}, nil
}

func (b *BlobStorage) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	content, contentType, err := b.store.Posts().GetPostFile(ctx, filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(content)), detectContentType(filename, contentType), nil
}

// Remove is a no-op: the bytes live in the row and go away with it.
func (b *BlobStorage) Remove(context.Context, domain.Attachment) error { return nil }
