package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/internal/store"
)

type postsRepo struct {
	db *sql.DB
}

const postJoin = `
	SELECT posts.id, posts.user_id, posts.title, posts.description,
	       posts.filename, posts.filepath, posts.content, posts.content_type,
	       posts.created_at, users.username
	FROM posts
	JOIN users ON users.id = posts.user_id`

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	filename, filepath, contentType, content := attachmentColumns(p)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, user_id, title, description, filename, filepath, content, content_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Title, p.Description, filename, filepath, content, contentType, createdAt,
	)
	return mapConstraint(err)
}

func (r *postsRepo) GetPostByID(ctx context.Context, id string) (domain.Post, error) {
	row := r.db.QueryRowContext(ctx, postJoin+` WHERE posts.id = ?`, id)
	return scanPost(row)
}

func (r *postsRepo) GetPostFile(ctx context.Context, filename string) ([]byte, string, error) {
	var (
		content     []byte
		contentType sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT content, content_type FROM posts WHERE filename = ?`, filename,
	).Scan(&content, &contentType)
	if err != nil {
		return nil, "", mapNotFound(err)
	}
	if content == nil {
		return nil, "", store.ErrNotFound
	}
	return content, mapNullString(contentType), nil
}

func (r *postsRepo) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		postJoin+` ORDER BY posts.created_at DESC, posts.id DESC`)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *postsRepo) ListPostsByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		postJoin+` WHERE posts.user_id = ? ORDER BY posts.created_at DESC, posts.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *postsRepo) UpdatePost(ctx context.Context, p domain.Post) error {
	filename, filepath, contentType, content := attachmentColumns(p)
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, description = ?, filename = ?, filepath = ?, content = ?, content_type = ?
		WHERE id = ?`,
		p.Title, p.Description, filename, filepath, content, contentType, p.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *postsRepo) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		p                              domain.Post
		filename, filepath, mediaType sql.NullString
		content                       []byte
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description,
		&filename, &filepath, &content, &mediaType,
		&p.CreatedAt, &p.Username,
	)
	if err != nil {
		return domain.Post{}, mapNotFound(err)
	}
	p.Attachment = mapAttachment(filename, filepath, mediaType, content)
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
