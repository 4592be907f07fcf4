package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookieName = "catalog_session"

var ErrSessionNotFound = errors.New("session not found")

// Session holds per-visitor UI state.
type Session struct {
	ID               string `json:"id"`
	Theme            string `json:"theme"`
	SelectedCategory string `json:"selected_category"`
	Flash            string `json:"flash,omitempty"`
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

// New returns a fresh session with a random id and the light theme.
func New() Session {
	return Session{ID: uuid.NewString(), Theme: "light"}
}

// ToggleTheme flips between light and dark.
func (s *Session) ToggleTheme() {
	if s.Theme == "dark" {
		s.Theme = "light"
		return
	}
	s.Theme = "dark"
}

// PopFlash returns the pending flash message and clears it.
func (s *Session) PopFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

// Load returns the session named by the request cookie, or a new one when
// the cookie is missing, malformed, or points at an expired session.
func Load(ctx context.Context, store Store, r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return New(), nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return New(), nil
	}

	s, err := store.Get(ctx, c.Value)
	if errors.Is(err, ErrSessionNotFound) {
		return New(), nil
	}
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// SetCookie writes the session cookie.
func SetCookie(w http.ResponseWriter, s Session, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
