package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/cache"
)

const (
	snapshotKey = "run:latest"
	runLockKey  = "run:lock"
)

// SnapshotStore keeps the latest run result and the cross-process run lock.
type SnapshotStore struct {
	cache   cache.Service
	ttl     time.Duration
	lockTTL time.Duration
}

// NewSnapshotStore builds a store. lockTTL should exceed the pass budget so
// a slow pass never loses its lock; it also bounds a crashed holder.
func NewSnapshotStore(c cache.Service, ttl, lockTTL time.Duration) *SnapshotStore {
	if lockTTL <= 0 {
		lockTTL = 15 * time.Minute
	}
	return &SnapshotStore{cache: c, ttl: ttl, lockTTL: lockTTL}
}

func (s *SnapshotStore) Save(ctx context.Context, res *models.RunResult) error {
	if err := s.cache.Set(ctx, snapshotKey, res, s.ttl); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Latest(ctx context.Context) (*models.RunResult, error) {
	var res models.RunResult
	if err := s.cache.Get(ctx, snapshotKey, &res); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, domrepo.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &res, nil
}

func (s *SnapshotStore) AcquireRunLock(ctx context.Context) (bool, error) {
	return s.cache.TryLock(ctx, runLockKey, s.lockTTL)
}

func (s *SnapshotStore) ReleaseRunLock(ctx context.Context) error {
	return s.cache.Unlock(ctx, runLockKey)
}
