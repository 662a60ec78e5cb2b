package repository

import (
	"context"
	"errors"

	"SignalDesk/internal/domain/models"
)

// PriceHistory supplies ordered daily history. An empty series is a valid
// answer for an instrument without data.
type PriceHistory interface {
	GetSeries(ctx context.Context, isin string, lookbackDays int) (models.PriceSeries, error)
}

// Universe lists the instruments a pass runs over.
type Universe interface {
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
}

// PriceStore is a backend that serves both history and the universe.
type PriceStore interface {
	PriceHistory
	Universe
	Health(ctx context.Context) error
	Close() error
}

type RunPublisher interface {
	PublishRun(ctx context.Context, res *models.RunResult) error
	Close() error
}

// ErrNoSnapshot is returned by SnapshotStore.Latest before the first pass.
var ErrNoSnapshot = errors.New("no run snapshot stored")

type SnapshotStore interface {
	Save(ctx context.Context, res *models.RunResult) error
	Latest(ctx context.Context) (*models.RunResult, error)
	AcquireRunLock(ctx context.Context) (bool, error)
	ReleaseRunLock(ctx context.Context) error
}

type Metrics interface {
	RecordInstrument(outcome string)
	RecordAction(action string)
	RecordRun(summary models.RunSummary)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
