package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"adbidder/internal/cache"
)

// Lease keeps two processes from bidding the same account at once.
type Lease struct {
	Store cache.Store
	Key   string
	TTL   time.Duration

	mu    sync.Mutex
	token string
}

func NewLease(store cache.Store, customerID string, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Lease{Store: store, Key: "bidder:lease:" + customerID, TTL: ttl}
}

func (l *Lease) Acquire(ctx context.Context) error {
	if l == nil || l.Store == nil {
		return nil
	}
	token := uuid.NewString()
	ok, err := l.Store.SetNX(ctx, l.Key, []byte(token), l.TTL)
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return ErrLeaseHeld
	}
	l.mu.Lock()
	l.token = token
	l.mu.Unlock()
	return nil
}

// Refresh extends the lease if this process still owns it.
func (l *Lease) Refresh(ctx context.Context) error {
	if l == nil || l.Store == nil {
		return nil
	}
	token, owned, err := l.owned(ctx)
	if err != nil || !owned {
		return err
	}
	return l.Store.Set(ctx, l.Key, []byte(token), l.TTL)
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.Store == nil {
		return nil
	}
	_, owned, err := l.owned(ctx)
	if err != nil || !owned {
		return err
	}
	l.mu.Lock()
	l.token = ""
	l.mu.Unlock()
	return l.Store.Delete(ctx, l.Key)
}

func (l *Lease) owned(ctx context.Context) (string, bool, error) {
	l.mu.Lock()
	token := l.token
	l.mu.Unlock()
	if token == "" {
		return "", false, nil
	}
	cur, found, err := l.Store.Get(ctx, l.Key)
	if err != nil {
		return "", false, err
	}
	return token, found && string(cur) == token, nil
}
