package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/cache"
	"github.com/fekuna/omnipos-warehouse/internal/session"
)

const keyPrefix = "session:"

type cacheRepository struct {
	store cache.Store
	now   func() time.Time
}

func NewCacheRepository(store cache.Store) session.Repository {
	return &cacheRepository{store: store, now: time.Now}
}

func (r *cacheRepository) Save(ctx context.Context, s *auth.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return r.store.Set(ctx, keyPrefix+s.ID, s, ttl)
}

func (r *cacheRepository) Find(ctx context.Context, id string) (*auth.Session, error) {
	var s auth.Session
	if err := r.store.Get(ctx, keyPrefix+id, &s); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	if !r.now().Before(s.ExpiresAt) {
		return nil, session.ErrSessionNotFound
	}
	return &s, nil
}

func (r *cacheRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, keyPrefix+id)
}
