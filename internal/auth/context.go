package auth

import (
	"context"
	"time"
)

// Session is one authenticated login. It is created at login and removed at
// logout or when its TTL runs out.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// GetSessionID returns "" outside an authenticated request.
func GetSessionID(ctx context.Context) string {
	if s, ok := SessionFromContext(ctx); ok {
		return s.ID
	}
	return ""
}
