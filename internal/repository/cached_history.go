package repository

import (
	"context"
	"errors"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/cache"
	applogger "SignalDesk/pkg/logger"
)

// CachedHistory serves repeated passes on the same day from cache. The key
// carries the UTC day so a new trading day never reads yesterday's series.
type CachedHistory struct {
	next  domrepo.PriceHistory
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
	now   func() time.Time
}

func NewCachedHistory(next domrepo.PriceHistory, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedHistory {
	if l == nil {
		l = applogger.Nop()
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedHistory{next: next, cache: c, ttl: ttl, l: l, now: time.Now}
}

func (h *CachedHistory) key(isin string, lookbackDays int) string {
	return cache.Key("series", isin, lookbackDays, h.now().UTC().Format(dayLayout))
}

// GetSeries never fails on a cache error; it falls through to the store.
func (h *CachedHistory) GetSeries(ctx context.Context, isin string, lookbackDays int) (models.PriceSeries, error) {
	key := h.key(isin, lookbackDays)

	var s models.PriceSeries
	err := h.cache.Get(ctx, key, &s)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		h.l.Warn("series cache read failed", applogger.String("isin", isin), applogger.Error(err))
	}

	s, err = h.next.GetSeries(ctx, isin, lookbackDays)
	if err != nil {
		return models.PriceSeries{}, err
	}
	if err := h.cache.Set(ctx, key, s, h.ttl); err != nil {
		h.l.Warn("series cache write failed", applogger.String("isin", isin), applogger.Error(err))
	}
	return s, nil
}
