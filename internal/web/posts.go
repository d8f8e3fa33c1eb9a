package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/pkg/slogx"
)

// PostsHandler serves the feed, the share form and the owner-only post pages.
type PostsHandler struct {
	Posts          *service.PostService
	Sessions       *Sessions
	Renderer       *Renderer
	MaxUploadBytes int64
}

func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	posts, err := h.Posts.Feed(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("feed load failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "feed", viewData{
		Title:    "Home",
		User:     user,
		LoggedIn: true,
		Flashes:  h.Sessions.PopFlashes(w, r),
		Posts:    posts,
	})
}

func (h *PostsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	posts, err := h.Posts.Mine(r.Context(), user.ID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("posts load failed", "user_id", user.ID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "posts", viewData{
		Title:    "My Posts",
		User:     user,
		LoggedIn: true,
		Flashes:  h.Sessions.PopFlashes(w, r),
		Posts:    posts,
	})
}

func (h *PostsHandler) GetNew(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())
	h.Renderer.Render(w, r, http.StatusOK, "post_new", viewData{
		Title:    "Share Work",
		User:     user,
		LoggedIn: true,
		Flashes:  h.Sessions.PopFlashes(w, r),
	})
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	upload, ok := h.parseUploadForm(w, r, "/post")
	if !ok {
		return
	}

	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	if _, err := h.Posts.Create(r.Context(), user.ID, title, description, upload); err != nil {
		h.flashPostError(w, r, err, "/post")
		return
	}

	h.Sessions.Flash(w, r, "success", "Your academic work has been shared!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PostsHandler) View(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	post, err := h.Posts.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		h.redirectNotOwned(w, r, err)
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "post_view", viewData{
		Title:    post.Title,
		User:     user,
		LoggedIn: true,
		Flashes:  h.Sessions.PopFlashes(w, r),
		Post:     &post,
	})
}

func (h *PostsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())
	postID := r.PathValue("id")

	upload, ok := h.parseUploadForm(w, r, "/post/"+postID)
	if !ok {
		return
	}

	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	if _, err := h.Posts.Update(r.Context(), user.ID, postID, title, description, upload); err != nil {
		switch {
		case errors.Is(err, service.ErrNotPostOwner), errors.Is(err, store.ErrNotFound):
			h.redirectNotOwned(w, r, err)
		default:
			h.flashPostError(w, r, err, "/post/"+postID)
		}
		return
	}

	h.Sessions.Flash(w, r, "success", "Your post has been updated!")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	if err := h.Posts.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		h.redirectNotOwned(w, r, err)
		return
	}

	h.Sessions.Flash(w, r, "success", "Your post has been deleted.")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// parseUploadForm parses the multipart body under the upload size cap and
// extracts the optional attachment. On failure it flashes, redirects to
// back and reports false; the caller just returns.
func (h *PostsHandler) parseUploadForm(w http.ResponseWriter, r *http.Request, back string) (*service.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Sessions.Flash(w, r, "error", "File is too large!")
			http.Redirect(w, r, back, http.StatusSeeOther)
			return nil, false
		}
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slogx.FromContext(r.Context()).Error("upload read failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}

	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (h *PostsHandler) flashPostError(w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		h.Sessions.Flash(w, r, "error", "Title is required!")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		h.Sessions.Flash(w, r, "error", "File type not allowed!")
	default:
		slogx.FromContext(r.Context()).Error("post save failed", "err", err)
		h.Sessions.Flash(w, r, "error", "Something went wrong. Please try again.")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// redirectNotOwned handles the missing-or-not-yours cases without revealing
// which one it was.
func (h *PostsHandler) redirectNotOwned(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, service.ErrNotPostOwner) && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(r.Context()).Error("post lookup failed", "err", err)
	}
	h.Sessions.Flash(w, r, "error", "Post not found.")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
