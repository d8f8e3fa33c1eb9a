package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/acadshare/acadshare/internal/domain"
)

// DiskStorage keeps attachment bytes under a single upload directory.
// Filenames arrive pre-sanitized; concurrent saves of the same name are
// last-writer-wins.
type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStorage{dir: dir}, nil
}

func (d *DiskStorage) Save(_ context.Context, filename, contentType string, data []byte) (domain.Attachment, error) {
	path := d.resolve(filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.Attachment{}, fmt.Errorf("write upload: %w", err)
	}

	return domain.Attachment{
		Filename:    filename,
		Path:        path,
		ContentType: detectContentType(filename, contentType),
	}, nil
}

func (d *DiskStorage) Open(_ context.Context, filename string) (io.ReadCloser, string, error) {
	f, err := os.Open(d.resolve(filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return f, detectContentType(filename, ""), nil
}

func (d *DiskStorage) Remove(_ context.Context, att domain.Attachment) error {
	if att.Path == "" {
		return nil
	}
	if err := os.Remove(att.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolve keeps lookups inside the upload directory regardless of what the
// request carried.
func (d *DiskStorage) resolve(filename string) string {
	return filepath.Join(d.dir, filepath.Base(filename))
}
