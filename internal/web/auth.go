package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/internal/store"
	"github.com/acadshare/acadshare/pkg/slogx"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Users    *service.UserService
	Sessions *Sessions
	Renderer *Renderer
}

func (h *AuthHandler) GetRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Sessions.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, "register", viewData{
		Title:   "Register",
		Flashes: h.Sessions.PopFlashes(w, r),
	})
}

func (h *AuthHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Sessions.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	params := service.RegisterParams{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(strings.ToLower(r.PostFormValue("email"))),
		FirstName:       strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:        strings.TrimSpace(r.PostFormValue("last_name")),
		Section:         strings.TrimSpace(r.PostFormValue("section")),
		LRN:             strings.TrimSpace(r.PostFormValue("lrn")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	if _, err := h.Users.Register(r.Context(), params); err != nil {
		h.Sessions.Flash(w, r, "error", registerErrorMessage(err))
		if !isValidationError(err) {
			slogx.FromContext(r.Context()).Error("registration failed", "err", err)
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	h.Sessions.Flash(w, r, "success", "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) GetLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Sessions.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, r, http.StatusOK, "login", viewData{
		Title:   "Login",
		Flashes: h.Sessions.PopFlashes(w, r),
	})
}

func (h *AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slogx.FromContext(r.Context()).Error("login failed", "err", err)
		}
		h.Sessions.Flash(w, r, "error", "Invalid username or password!")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.Sessions.SignIn(w, r, user); err != nil {
		slogx.FromContext(r.Context()).Error("session write failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.Sessions.Flash(w, r, "success", "Login successful!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.Sessions.SignOut(w, r)
	h.Sessions.Flash(w, r, "info", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// registerErrorMessage maps registration failures to the user-facing flash
// text, falling back to a generic message for anything unexpected.
func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return "Please fill in all required fields!"
	case errors.Is(err, service.ErrInvalidLRN):
		return "LRN must be exactly 12 digits!"
	case errors.Is(err, service.ErrPasswordMismatch):
		return "Passwords do not match!"
	case errors.Is(err, store.ErrUsernameTaken):
		return "Username already exists!"
	case errors.Is(err, store.ErrEmailTaken):
		return "Email already registered!"
	case errors.Is(err, store.ErrLRNTaken):
		return "LRN already registered!"
	default:
		return "Something went wrong. Please try again."
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMissingFields) ||
		errors.Is(err, service.ErrInvalidLRN) ||
		errors.Is(err, service.ErrPasswordMismatch) ||
		errors.Is(err, store.ErrUsernameTaken) ||
		errors.Is(err, store.ErrEmailTaken) ||
		errors.Is(err, store.ErrLRNTaken)
}
