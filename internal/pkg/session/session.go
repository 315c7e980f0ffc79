package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "shoplist_session"
	userIDKey   = "user_id"
)

// Manager wraps the cookie session store used by the browser surface. It
// holds exactly two kinds of state: the authenticated user's ID and
// one-shot flash messages consumed on the next render.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager signing cookies with secret.
func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// SignIn establishes an authenticated session for the given user ID.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut destroys the current session.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// UserID returns the authenticated user's ID, if a session exists.
func (m *Manager) UserID(r *http.Request) (string, bool) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	id, ok := sess.Values[userIDKey].(string)
	return id, ok && id != ""
}

// AddFlash queues a one-shot notification for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := m.store.Get(r, sessionName)
	sess.AddFlash(msg)
	sess.Save(r, w)
}

// Flashes pops and returns the queued notifications.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	sess.Save(r, w)
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
