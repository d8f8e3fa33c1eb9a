package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/acadshare/acadshare/internal/files"
	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/pkg/slogx"
)

// DownloadHandler streams stored attachments.
type DownloadHandler struct {
	Posts    *service.PostService
	Sessions *Sessions
}

func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	rc, contentType, err := h.Posts.OpenFile(r.Context(), filename)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			h.Sessions.Flash(w, r, "error", "File not found.")
		} else {
			slogx.FromContext(r.Context()).Error("download failed", "filename", filename, "err", err)
			h.Sessions.Flash(w, r, "error", "Error downloading file.")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log the broken transfer.
		slogx.FromContext(r.Context()).Warn("download interrupted", "filename", filename, "err", err)
	}
}
