// Package postgres implements store.Store on a networked Postgres database.
// This is the blob revision's home: post bytes live inline in the posts row,
// so app instances need no shared filesystem.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/store"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
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

// mapConstraint translates unique violations into typed store errors using
// the structured constraint name the driver exposes.
func mapConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch pqErr.Constraint {
	case "users_username_idx":
		return store.ErrUsernameTaken
	case "users_email_idx":
		return store.ErrEmailTaken
	case "users_lrn_idx":
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
