package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

type LockOptions struct {
	TTL       time.Duration
	Retries   int
	RetryWait time.Duration
}

// WithLock runs fn while holding key. Acquisition is retried Retries times,
// RetryWait apart; the lock is released even when fn fails. While fn runs the
// lock is renewed every TTL/3, so TTL only bounds how long a crashed holder
// blocks others, not how long fn may take.
func WithLock(ctx context.Context, s Store, key string, opts LockOptions, fn func(ctx context.Context) error) error {
	token := uuid.New().String()
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	acquired := false
	var lastErr error
	for i := 0; i < attempts; i++ {
		ok, err := s.AcquireLock(ctx, key, token, opts.TTL)
		if err != nil {
			lastErr = err
		}
		if ok {
			acquired = true
			break
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryWait):
		}
	}
	if !acquired {
		if lastErr != nil {
			return errors.Join(ErrLockNotAcquired, lastErr)
		}
		return ErrLockNotAcquired
	}

	// release with a fresh context so a cancelled request still unlocks
	defer s.ReleaseLock(context.WithoutCancel(ctx), key, token)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		keepAlive(ctx, s, key, token, opts.TTL, stop)
	}()
	defer func() {
		close(stop)
		<-done
	}()

	return fn(ctx)
}

// keepAlive renews the lock until stop closes or the lock is lost.
func keepAlive(ctx context.Context, s Store, key, token string, ttl time.Duration, stop <-chan struct{}) {
	interval := ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ok, err := s.ExtendLock(context.WithoutCancel(ctx), key, token, ttl)
			if err == nil && !ok {
				return
			}
		}
	}
}
