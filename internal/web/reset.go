package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/pkg/slogx"
	"github.com/acadshare/acadshare/pkg/tokenx"
)

// ResetHandler serves the forgot-password flow.
type ResetHandler struct {
	Reset    *service.ResetService
	Sessions *Sessions
	Renderer *Renderer
}

func (h *ResetHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, r, http.StatusOK, "reset_request", viewData{
		Title:   "Reset Password",
		Flashes: h.Sessions.PopFlashes(w, r),
	})
}

func (h *ResetHandler) PostRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	if err := h.Reset.Request(r.Context(), email); err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			h.Sessions.Flash(w, r, "error", "Please enter your e-mail address!")
			http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
			return
		}
		slogx.FromContext(r.Context()).Error("reset request failed", "err", err)
		h.Sessions.Flash(w, r, "error", "Something went wrong. Please try again.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}

	// Same flash whether or not the account exists.
	h.Sessions.Flash(w, r, "info", "If that e-mail is registered, reset instructions have been sent.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *ResetHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if _, err := h.Reset.VerifyToken(token); err != nil {
		h.flashTokenError(w, r, err)
		return
	}

	h.Renderer.Render(w, r, http.StatusOK, "reset_form", viewData{
		Title:   "Choose a New Password",
		Flashes: h.Sessions.PopFlashes(w, r),
		Token:   token,
	})
}

func (h *ResetHandler) PostForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	token := r.PathValue("token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	if err := h.Reset.Redeem(r.Context(), token, password, confirm); err != nil {
		switch {
		case errors.Is(err, tokenx.ErrTokenExpired), errors.Is(err, tokenx.ErrTokenInvalid):
			h.flashTokenError(w, r, err)
		case errors.Is(err, service.ErrPasswordMismatch):
			h.Sessions.Flash(w, r, "error", "Passwords do not match!")
			http.Redirect(w, r, "/reset_password/"+token, http.StatusSeeOther)
		case errors.Is(err, service.ErrMissingFields):
			h.Sessions.Flash(w, r, "error", "Please fill in both password fields!")
			http.Redirect(w, r, "/reset_password/"+token, http.StatusSeeOther)
		default:
			slogx.FromContext(r.Context()).Error("password reset failed", "err", err)
			h.Sessions.Flash(w, r, "error", "Something went wrong. Please try again.")
			http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		}
		return
	}

	h.Sessions.Flash(w, r, "success", "Your password has been updated! Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *ResetHandler) flashTokenError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, tokenx.ErrTokenExpired) {
		h.Sessions.Flash(w, r, "error", "This reset link has expired. Please request a new one.")
	} else {
		h.Sessions.Flash(w, r, "error", "Invalid reset link. Please request a new one.")
	}
	http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
}
