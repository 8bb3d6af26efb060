package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"

	"gitea.jw6.us/james/campusdesk/internal/config"
)

const sessionCookieName = "campusdesk_session"

// Session is the per-browser login state. Token is the backend credential.
type Session struct {
	ID        string `json:"sid"`
	Username  string `json:"usr"`
	Token     string `json:"tok"`
	ExpiresAt int64  `json:"exp"`
}

// SessionManager manages web UI sessions.
type SessionManager struct {
	cookieName string
	codec      *securecookie.SecureCookie
	secure     bool
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	hashKey, err := deriveKey(cfg.Session.Secret, "campusdesk session hmac", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(cfg.Session.Secret, "campusdesk session aes", 32)
	if err != nil {
		return nil, err
	}

	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(ttl / time.Second))
	sc.SetSerializer(securecookie.JSONEncoder{})

	return &SessionManager{
		cookieName: sessionCookieName,
		codec:      sc,
		secure:     cfg.SecureCookies(),
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

// Issue starts a new session holding the backend credential.
func (m *SessionManager) Issue(w http.ResponseWriter, username, token string) (*Session, error) {
	expires := m.now().Add(m.ttl)
	sess := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		Token:     token,
		ExpiresAt: expires.Unix(),
	}

	encoded, err := m.codec.Encode(m.cookieName, sess)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
	})
}

// Current extracts the session from the request cookie if present.
func (m *SessionManager) Current(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	var sess Session
	if err := m.codec.Decode(m.cookieName, c.Value, &sess); err != nil {
		return nil, false
	}
	if sess.ID == "" || sess.Token == "" {
		return nil, false
	}
	if time.Unix(sess.ExpiresAt, 0).Before(m.now()) {
		return nil, false
	}
	return &sess, true
}
