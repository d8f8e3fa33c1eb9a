package domain

import "time"

// Post is one shared item, owned by exactly one user. Ownership never
// changes after creation.
type Post struct {
	ID          string
	UserID      string
	Title       string
	Description string

	// Username is the owner's username, joined in for display. Not a
	// column of the posts table.
	Username string

	// Attachment is nil for posts shared without a file.
	Attachment *Attachment

	CreatedAt time.Time
}

// Attachment describes a post's uploaded file. Exactly one of Path or
// Content is populated, depending on the configured storage backend:
// the disk backend records the on-disk path, the blob backend carries the
// bytes inline with their MIME type.
type Attachment struct {
	Filename    string
	Path        string
	ContentType string
	Content     []byte
}

// HasFile reports whether the post carries an uploaded file.
func (p *Post) HasFile() bool {
	return p.Attachment != nil && p.Attachment.Filename != ""
}
