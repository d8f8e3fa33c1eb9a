package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileIcon(t *testing.T) {
	cases := map[string]string{
		"report.pdf":   "file-pdf",
		"essay.doc":    "file-word",
		"essay.docx":   "file-word",
		"notes.txt":    "file-alt",
		"bundle.zip":   "file-archive",
		"bundle.rar":   "file-archive",
		"photo.png":    "file-image",
		"photo.JPG":    "file-image",
		"scan.jpeg":    "file-image",
		"anim.gif":     "file-image",
		"mystery.dat":  "file",
		"no-extension": "file",
	}
	for name, want := range cases {
		require.Equal(t, want, fileIcon(name), "filename %q", name)
	}
}

func TestIsImage(t *testing.T) {
	for _, name := range []string{"photo.png", "photo.PNG", "scan.jpg", "scan.jpeg", "anim.gif"} {
		require.True(t, isImage(name), name)
	}
	for _, name := range []string{"report.pdf", "notes.txt", "bundle.zip", "no-extension"} {
		require.False(t, isImage(name), name)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 9, 5, 0, 0, time.UTC)
	require.Equal(t, "Mar 07, 2025 at 09:05", formatDate(ts))
}

func TestRendererParsesAllPages(t *testing.T) {
	rd := NewRenderer()
	for _, name := range []string{
		"feed", "login", "register",
		"post_new", "post_view", "posts",
		"reset_request", "reset_form",
	} {
		require.Contains(t, rd.pages, name)
	}
}
