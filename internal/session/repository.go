package session

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
)

var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	Save(ctx context.Context, s *auth.Session) error
	// Find returns ErrSessionNotFound for unknown or expired sessions.
	Find(ctx context.Context, id string) (*auth.Session, error)
	Delete(ctx context.Context, id string) error
}
