// Package csrf implements double-submit cookie protection for the console's forms.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"gitea.jw6.us/james/campusdesk/internal/config"
	"gitea.jw6.us/james/campusdesk/internal/http/errors"
)

type contextKey struct{}

const (
	cookieName = "campusdesk_csrf"
	headerName = "X-CSRF-Token"
	// FieldName is the hidden form field carrying the token.
	FieldName = "_csrf"
)

// Middleware issues a CSRF token cookie and validates it on mutating requests.
func Middleware(cfg *config.Config) func(http.Handler) http.Handler {
	secure := cfg.SecureCookies()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				token, err = generateToken()
				if err != nil {
					errors.InternalError(w, r, err, "failed to issue csrf token")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if isStateChanging(r.Method) {
				provided := r.Header.Get(headerName)
				if provided == "" {
					provided = r.FormValue(FieldName)
				}
				if !Valid(token, provided) {
					errors.LogWarn(r, "csrf token rejected", nil)
					http.Error(w, "invalid csrf token", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), contextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Valid compares the cookie token with the submitted one in constant time.
func Valid(cookieToken, provided string) bool {
	if cookieToken == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(provided)) == 1
}

// TokenFromContext returns the CSRF token associated with the request.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}
	return ""
}

// WithToken attaches a token to ctx, for handlers rendered outside the middleware.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
