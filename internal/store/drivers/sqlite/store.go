// Package sqlite implements store.Store on an embedded sqlite database.
// This is the file-based revision: post bytes normally live on disk with
// only the path in the row, though the schema carries the blob columns so
// either file backend works against it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/store"

	sqlite3 "modernc.org/sqlite"
)

// sqlite extended result codes for unique violations.
const (
	codeConstraintUnique     = 2067
	codeConstraintPrimaryKey = 1555
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }
func (s *Store) Posts() store.Posts { return &postsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates unique violations into typed store errors, keyed
// on the driver's extended result code plus the violated column identifier
// (table.column), never on user-facing message text.
func mapConstraint(err error) error {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	if se.Code() != codeConstraintUnique && se.Code() != codeConstraintPrimaryKey {
		return err
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return store.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return store.ErrEmailTaken
	case strings.Contains(msg, "users.lrn"):
		return store.ErrLRNTaken
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// attachmentColumns turns a post's optional attachment into its nullable
// column values.
func attachmentColumns(p domain.Post) (filename, filepath, contentType sql.NullString, content []byte) {
	if p.Attachment == nil {
		return
	}
	filename = mapStringNull(p.Attachment.Filename)
	filepath = mapStringNull(p.Attachment.Path)
	contentType = mapStringNull(p.Attachment.ContentType)
	content = p.Attachment.Content
	return
}

func mapAttachment(filename, filepath, contentType sql.NullString, content []byte) *domain.Attachment {
	if !filename.Valid || filename.String == "" {
		return nil
	}
	return &domain.Attachment{
		Filename:    filename.String,
		Path:        mapNullString(filepath),
		ContentType: mapNullString(contentType),
		Content:     content,
	}
}
