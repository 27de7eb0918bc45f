package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/session"
	"github.com/fekuna/omnipos-warehouse/internal/session/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionUseCase struct {
	repo          session.Repository
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
	cleaners      []session.Cleaner
	ttl           time.Duration
	logger        logger.ZapLogger
}

func NewSessionUseCase(
	repo session.Repository,
	authenticator auth.Authenticator,
	tokens *auth.TokenIssuer,
	ttl time.Duration,
	log logger.ZapLogger,
	cleaners ...session.Cleaner,
) session.UseCase {
	return &sessionUseCase{
		repo:          repo,
		authenticator: authenticator,
		tokens:        tokens,
		cleaners:      cleaners,
		ttl:           ttl,
		logger:        log,
	}
}

func (uc *sessionUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, apperr.Validation("CredentialsRequired", "username and password are required")
	}

	id, err := uc.authenticator.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			uc.logger.Warn("rejected login", zap.String("username", input.Username))
			return nil, apperr.Wrap(apperr.KindUnauthorized, "InvalidCredentials", "invalid username or password", err)
		}
		return nil, err
	}

	now := time.Now()
	s := &auth.Session{
		ID:        uuid.New().String(),
		Username:  id.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.repo.Save(ctx, s); err != nil {
		uc.logger.Error("failed to save session", zap.Error(err))
		return nil, err
	}

	token, err := uc.tokens.Issue(s)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("session started", zap.String("session_id", s.ID), zap.String("username", s.Username))
	return &dto.LoginResult{Token: token, Username: s.Username, ExpiresAt: s.ExpiresAt}, nil
}

// Logout ends the session and discards everything it owned.
func (uc *sessionUseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.repo.Delete(ctx, sessionID); err != nil {
		uc.logger.Error("failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	for _, c := range uc.cleaners {
		if err := c.Discard(ctx, sessionID); err != nil {
			uc.logger.Warn("failed to discard session state", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	uc.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

func (uc *sessionUseCase) Authorize(ctx context.Context, token string) (*auth.Session, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "TokenMissing", "missing bearer token")
	}
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "TokenInvalid", "invalid or expired token", err)
	}

	s, err := uc.repo.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, apperr.Wrap(apperr.KindUnauthorized, "SessionExpired", "session has ended, please log in again", err)
		}
		return nil, err
	}
	return s, nil
}
