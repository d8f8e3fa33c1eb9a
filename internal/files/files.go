// Package files abstracts where uploaded attachment bytes live. The disk
// backend writes them under a configured upload directory and records the
// path on the post row; the blob backend carries them inline in the row.
// Handlers and services are written once against Storage, so either backend
// can be swapped in by configuration.
package files

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"

	"github.com/acadshare/acadshare/internal/domain"
)

var ErrNotFound = errors.New("files: not found")

type Storage interface {
	// Save persists the upload and returns the attachment fields to record
	// on the post row.
	Save(ctx context.Context, filename, contentType string, data []byte) (domain.Attachment, error)

	// Open streams a previously saved attachment by filename, returning its
	// MIME type. The caller closes the reader.
	Open(ctx context.Context, filename string) (io.ReadCloser, string, error)

	// Remove deletes stored bytes living outside the post row. For backends
	// keeping bytes inline it is a no-op; row deletion already removes them.
	Remove(ctx context.Context, att domain.Attachment) error
}

// detectContentType falls back to the filename extension when the browser
// did not send a usable content type.
func detectContentType(filename, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
