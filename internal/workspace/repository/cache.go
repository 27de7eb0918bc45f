package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/cache"
	"github.com/fekuna/omnipos-warehouse/internal/workspace"
)

const (
	keyPrefix  = "workspace:"
	lockPrefix = "lock:workspace:"
)

type cacheRepository struct {
	store cache.Store
	ttl   time.Duration
	lock  cache.LockOptions
}

func NewCacheRepository(store cache.Store, ttl time.Duration, lock cache.LockOptions) workspace.Repository {
	return &cacheRepository{store: store, ttl: ttl, lock: lock}
}

func (r *cacheRepository) Get(ctx context.Context, sessionID string) (*workspace.State, error) {
	var s workspace.State
	if err := r.store.Get(ctx, keyPrefix+sessionID, &s); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, workspace.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *cacheRepository) Save(ctx context.Context, sessionID string, s *workspace.State) error {
	return r.store.Set(ctx, keyPrefix+sessionID, s, r.ttl)
}

func (r *cacheRepository) Delete(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, keyPrefix+sessionID)
}

func (r *cacheRepository) Lock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	err := cache.WithLock(ctx, r.store, lockPrefix+sessionID, r.lock, fn)
	if errors.Is(err, cache.ErrLockNotAcquired) {
		return apperr.Wrap(apperr.KindBusy, "WorkspaceBusy", "another request is updating this workspace, try again", err)
	}
	return err
}
