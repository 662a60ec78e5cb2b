package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	applogger "SignalDesk/pkg/logger"
)

// PassRunner wraps one engine pass with the run lock, universe loading,
// snapshot storage and publication.
type PassRunner struct {
	engine    *Engine
	universe  domrepo.Universe
	snapshots domrepo.SnapshotStore
	publisher domrepo.RunPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger

	thresholds Thresholds
	budget     time.Duration
}

// NewPassRunner builds a runner. snapshots, publisher and metrics may be nil.
func NewPassRunner(
	engine *Engine,
	universe domrepo.Universe,
	snapshots domrepo.SnapshotStore,
	publisher domrepo.RunPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	thresholds Thresholds,
	budget time.Duration,
) *PassRunner {
	if l == nil {
		l = applogger.Nop()
	}
	return &PassRunner{
		engine:     engine,
		universe:   universe,
		snapshots:  snapshots,
		publisher:  publisher,
		metrics:    metrics,
		l:          l,
		thresholds: thresholds,
		budget:     budget,
	}
}

// RunOnce executes a full pass. It returns ErrRunInProgress when another
// process holds the run lock. Snapshot and publish failures are logged and
// do not discard the computed result.
func (p *PassRunner) RunOnce(ctx context.Context) (*models.RunResult, error) {
	if p.snapshots != nil {
		ok, err := p.snapshots.AcquireRunLock(ctx)
		if err != nil {
			p.recordError("lock")
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer func() {
			// release on a fresh context so a cancelled pass still unlocks
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.snapshots.ReleaseRunLock(rctx); err != nil {
				p.l.Warn("release run lock", applogger.Error(err))
			}
		}()
	}

	instruments, err := p.universe.ListInstruments(ctx)
	if err != nil {
		p.recordError("universe")
		return nil, fmt.Errorf("load universe: %w", err)
	}
	p.l.Info("pass starting",
		applogger.Int("universe", len(instruments)),
		applogger.Duration("budget_ms", p.budget),
	)

	res, err := p.engine.Run(ctx, instruments, p.thresholds, p.budget)
	if err != nil {
		return nil, err
	}

	if p.snapshots != nil {
		if err := p.snapshots.Save(ctx, res); err != nil {
			p.recordError("snapshot")
			p.l.Error("save run snapshot", applogger.Error(err))
		}
	}
	if p.publisher != nil {
		start := time.Now()
		if err := p.publisher.PublishRun(ctx, res); err != nil {
			p.recordError("publish")
			p.l.Error("publish run", applogger.Error(err))
		} else if p.metrics != nil {
			p.metrics.RecordLatency("publish_run", time.Since(start).Seconds())
		}
	}
	return res, nil
}

// Latest returns the last stored snapshot.
func (p *PassRunner) Latest(ctx context.Context) (*models.RunResult, error) {
	if p.snapshots == nil {
		return nil, errors.New("snapshot store not configured")
	}
	return p.snapshots.Latest(ctx)
}

func (p *PassRunner) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
