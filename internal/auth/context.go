package auth

import "context"

type contextKey string

const contextKeySession contextKey = "session"

func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*Session)
	return s, ok && s != nil
}

// ContextCredentials hands the backend client the credential of the session
// stored in the request context.
type ContextCredentials struct{}

func (ContextCredentials) Credential(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok || sess.Token == "" {
		return "", false
	}
	return sess.Token, true
}
