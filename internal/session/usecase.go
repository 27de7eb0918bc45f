package session

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/session/dto"
)

type UseCase interface {
	Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authorize(ctx context.Context, token string) (*auth.Session, error)
}

// Cleaner drops state owned by a session when it ends.
type Cleaner interface {
	Discard(ctx context.Context, sessionID string) error
}
