package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/acadshare/acadshare/internal/service"
	"github.com/acadshare/acadshare/pkg/httpx"
	"github.com/acadshare/acadshare/pkg/slogx"
)

type ctxKey int

const userCtxKey ctxKey = iota

// currentUser returns the session user placed in the context by the
// requireUser middleware.
func currentUser(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(userCtxKey).(SessionUser)
	return user, ok
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions *Sessions
	renderer *Renderer
	logger   *slog.Logger

	Users *service.UserService
	Posts *service.PostService
	Reset *service.ResetService

	MaxUploadBytes int64
}

func NewRouter(
	sessions *Sessions,
	users *service.UserService,
	posts *service.PostService,
	reset *service.ResetService,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:            http.NewServeMux(),
		sessions:       sessions,
		renderer:       NewRenderer(),
		logger:         logger,
		Users:          users,
		Posts:          posts,
		Reset:          reset,
		MaxUploadBytes: maxUploadBytes,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(logger),
	}

	r.ApplyRoutes()
	return r
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPosts()
	r.registerReset()
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Users:    r.Users,
		Sessions: r.sessions,
		Renderer: r.renderer,
	}

	r.Mux.Handle("GET /register", http.HandlerFunc(h.GetRegister))
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(h.PostRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("GET /login", http.HandlerFunc(h.GetLogin))
	// Keyed by IP and submitted username so one address cannot walk a
	// password list against a single account unthrottled.
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.PostLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		))

	r.Mux.Handle("GET /logout", r.requireUser(http.HandlerFunc(h.Logout)))
}

func (r *Router) registerPosts() {
	posts := &PostsHandler{
		Posts:          r.Posts,
		Sessions:       r.sessions,
		Renderer:       r.renderer,
		MaxUploadBytes: r.MaxUploadBytes,
	}
	download := &DownloadHandler{
		Posts:    r.Posts,
		Sessions: r.sessions,
	}

	r.Mux.Handle("GET /{$}", r.requireUser(http.HandlerFunc(posts.Feed)))
	r.Mux.Handle("GET /post", r.requireUser(http.HandlerFunc(posts.GetNew)))
	r.Mux.Handle("POST /post", r.requireUser(http.HandlerFunc(posts.Create)))
	r.Mux.Handle("GET /post/{id}", r.requireUser(http.HandlerFunc(posts.View)))
	r.Mux.Handle("POST /post/{id}/edit", r.requireUser(http.HandlerFunc(posts.Edit)))
	r.Mux.Handle("GET /post/{id}/delete", r.requireUser(http.HandlerFunc(posts.Delete)))
	r.Mux.Handle("GET /posts", r.requireUser(http.HandlerFunc(posts.Mine)))
	r.Mux.Handle("GET /download/{filename}", r.requireUser(http.HandlerFunc(download.Download)))
}

func (r *Router) registerReset() {
	h := &ResetHandler{
		Reset:    r.Reset,
		Sessions: r.sessions,
		Renderer: r.renderer,
	}

	r.Mux.Handle("GET /reset_password", http.HandlerFunc(h.GetRequest))
	r.Mux.Handle("POST /reset_password",
		httpx.Chain(http.HandlerFunc(h.PostRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("GET /reset_password/{token}", http.HandlerFunc(h.GetForm))
	r.Mux.Handle("POST /reset_password/{token}",
		httpx.Chain(http.HandlerFunc(h.PostForm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
}

// requireUser gates a route behind a signed-in session, stashing the user
// in the request context for the handler.
func (r *Router) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		user, ok := r.sessions.Current(req)
		if !ok {
			http.Redirect(w, req, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(req.Context(), userCtxKey, user)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
