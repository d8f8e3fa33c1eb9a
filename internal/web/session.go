package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/acadshare/acadshare/internal/domain"
)

const (
	sessionName = "acadshare_session"

	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
)

// Flash is a one-shot message rendered on the next page load. Kind selects
// the alert styling: "success" or "error".
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// SessionUser is the slice of account state carried in the cookie.
type SessionUser struct {
	ID       string
	Username string
}

// Sessions wraps the cookie store behind the handful of operations the
// handlers need. Cookie writes happen on the same request that mutates the
// session, so handlers never touch gorilla types directly.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions builds the cookie session layer. An empty secret generates a
// random key, which invalidates sessions on restart; fine for development,
// set SECRET_KEY in production.
func NewSessions(secret []byte) *Sessions {
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}

	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: cs}
}

// Current returns the signed-in user, if any. A malformed or stale cookie
// reads as signed-out rather than an error.
func (s *Sessions) Current(r *http.Request) (SessionUser, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return SessionUser{}, false
	}

	id, ok := sess.Values[sessionKeyUserID].(string)
	if !ok || id == "" {
		return SessionUser{}, false
	}
	username, _ := sess.Values[sessionKeyUsername].(string)

	return SessionUser{ID: id, Username: username}, true
}

// SignIn records the user in the session cookie.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, user domain.User) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[sessionKeyUserID] = user.ID
	sess.Values[sessionKeyUsername] = user.Username
	return sess.Save(r, w)
}

// SignOut removes the signed-in identity. The cookie itself stays alive so
// the goodbye flash still has somewhere to ride.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, sessionKeyUserID)
	delete(sess.Values, sessionKeyUsername)
	return sess.Save(r, w)
}

// Flash queues a one-shot message for the next rendered page.
func (s *Sessions) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess, _ := s.store.Get(r, sessionName)
	sess.AddFlash(Flash{Kind: kind, Message: message})
	_ = sess.Save(r, w)
}

// PopFlashes drains queued messages, saving the emptied session.
func (s *Sessions) PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
