package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidLogin is the only login failure surfaced to users, whatever the cause.
var ErrInvalidLogin = errors.New("invalid username or password")

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// Authenticator exchanges console credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Service encapsulates the login flow and the session guard.
type Service struct {
	sessions *SessionManager
	backend  Authenticator
	onLogout []func(sessionID string)
}

func NewService(sessions *SessionManager, backend Authenticator) *Service {
	return &Service{sessions: sessions, backend: backend}
}

// OnLogout registers a hook run with the session ID whenever a session ends.
func (s *Service) OnLogout(fn func(sessionID string)) {
	s.onLogout = append(s.onLogout, fn)
}

// Login authenticates against the backend and stores the returned credential.
// Nothing is stored on failure.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	token, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogin, err)
	}

	sess, err := s.sessions.Issue(w, username, token)
	if err != nil {
		return nil, fmt.Errorf("%w: issue session: %v", ErrInvalidLogin, err)
	}
	return sess, nil
}

// IsAuthenticated reports whether the request carries a credential. It never
// contacts the backend, so an expired backend token still counts.
func (s *Service) IsAuthenticated(r *http.Request) bool {
	_, ok := s.sessions.Current(r)
	return ok
}

// RequireSession injects the current session into the context or redirects to the login page.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Current(r)
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// ClearSession drops the cookie and everything held for the session.
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFromContext(r.Context()); ok {
		for _, fn := range s.onLogout {
			fn(sess.ID)
		}
	}
	s.sessions.Clear(w)
}
