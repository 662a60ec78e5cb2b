package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/services/features"
	"SignalDesk/internal/services/filter"
	"SignalDesk/internal/services/prediction"
	"SignalDesk/internal/services/screener"
	applogger "SignalDesk/pkg/logger"
)

const (
	DefaultPredictionLookbackDays = 3*365 + 30
	DefaultScreeningLookbackDays  = 365
	DefaultCheckEvery             = 10
	DefaultMinPrice               = 1.0
)

// EngineOption configures Engine.
type EngineOption func(*Engine)

// Engine runs one screening and prediction pass over a universe.
type Engine struct {
	history domrepo.PriceHistory
	metrics domrepo.Metrics
	l       *applogger.Logger
	now     func() time.Time

	workers        int
	checkEvery     int
	minPrice       float64
	predictionDays int
	screeningDays  int
}

func NewEngine(history domrepo.PriceHistory, opts ...EngineOption) *Engine {
	e := &Engine{
		history:        history,
		l:              applogger.Nop(),
		now:            time.Now,
		workers:        1,
		checkEvery:     DefaultCheckEvery,
		minPrice:       DefaultMinPrice,
		predictionDays: DefaultPredictionLookbackDays,
		screeningDays:  DefaultScreeningLookbackDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m domrepo.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces the wall clock used for the time budget.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithWorkers sets how many instruments of one checkpoint chunk are
// evaluated concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCheckEvery sets how many instruments run between budget checks.
func WithCheckEvery(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.checkEvery = n
		}
	}
}

// WithMinPrice sets the latest-close floor below which instruments are skipped.
func WithMinPrice(p float64) EngineOption {
	return func(e *Engine) { e.minPrice = p }
}

// WithLookbacks sets the history windows in calendar days.
func WithLookbacks(predictionDays, screeningDays int) EngineOption {
	return func(e *Engine) {
		if predictionDays > 0 {
			e.predictionDays = predictionDays
		}
		if screeningDays > 0 {
			e.screeningDays = screeningDays
		}
	}
}

type outcome struct {
	signals    []models.SignalResult
	prediction *models.PredictionResult
	skipped    bool
	err        error
}

// Run evaluates every instrument of universe in order. The budget is soft:
// it is checked between checkpoint chunks and, once exceeded, the remaining
// instruments are counted as skipped and a partial result is returned.
// A zero budget means unlimited. Threshold keys left at zero take their
// defaults. Only invalid thresholds produce an error.
func (e *Engine) Run(ctx context.Context, universe []models.Instrument, th Thresholds, budget time.Duration) (*models.RunResult, error) {
	// th is a copy; filling its defaults never touches the caller's value
	if err := th.Normalize(); err != nil {
		return nil, err
	}
	model := prediction.NewModel(th.Model)

	start := e.now()
	res := models.NewRunResult()
	res.Summary.StartedAt = start
	res.Summary.Universe = len(universe)

	for i := 0; i < len(universe); i += e.checkEvery {
		if i > 0 && budget > 0 && e.now().Sub(start) > budget {
			res.Summary.BudgetExceeded = true
			res.Summary.Skipped += len(universe) - i
			e.l.Warn("time budget exceeded",
				applogger.Int("admitted", i),
				applogger.Int("remaining", len(universe)-i),
				applogger.Duration("budget_ms", budget),
			)
			break
		}
		end := min(i+e.checkEvery, len(universe))
		chunk := universe[i:end]
		for j, out := range e.evaluateChunk(ctx, chunk, th, model) {
			e.merge(res, chunk[j], out)
		}
	}

	for _, c := range models.Categories {
		res.Summary.CategoryCounts[c] = len(res.Signals[c])
	}
	screener.Rank(res.Signals, th.Screener.TopN)
	res.Predictions = gatePredictions(res.Predictions, th.Quant)
	res.Summary.Predicted = len(res.Predictions)
	res.Summary.Elapsed = e.now().Sub(start)

	if e.metrics != nil {
		e.metrics.RecordRun(res.Summary)
		e.metrics.RecordLatency("engine_run", res.Summary.Elapsed.Seconds())
	}
	e.l.Info("engine pass complete",
		applogger.Int("universe", res.Summary.Universe),
		applogger.Int("processed", res.Summary.Processed),
		applogger.Int("skipped", res.Summary.Skipped),
		applogger.Int("failed", res.Summary.Failed),
		applogger.Int("predicted", res.Summary.Predicted),
		applogger.Bool("budget_exceeded", res.Summary.BudgetExceeded),
		applogger.Duration("duration_ms", res.Summary.Elapsed),
	)
	return res, nil
}

func (e *Engine) evaluateChunk(ctx context.Context, chunk []models.Instrument, th Thresholds, model *prediction.Model) []outcome {
	outs := make([]outcome, len(chunk))
	if e.workers <= 1 || len(chunk) == 1 {
		for i, inst := range chunk {
			outs[i] = e.evaluate(ctx, inst, th, model)
		}
		return outs
	}

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, inst := range chunk {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, inst models.Instrument) {
			defer wg.Done()
			defer func() { <-sem }()
			outs[i] = e.evaluate(ctx, inst, th, model)
		}(i, inst)
	}
	wg.Wait()
	return outs
}

// evaluate is the per-instrument failure boundary: errors and panics become
// a ComputeError on the outcome and never escape.
func (e *Engine) evaluate(ctx context.Context, inst models.Instrument, th Thresholds, model *prediction.Model) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: &ComputeError{ISIN: inst.ISIN, Stage: "panic", Err: fmt.Errorf("%v", r)}}
		}
	}()

	series, err := e.history.GetSeries(ctx, inst.ISIN, e.predictionDays)
	if err != nil {
		return outcome{err: &ComputeError{ISIN: inst.ISIN, Stage: "fetch", Err: err}}
	}
	last, ok := series.Last()
	if !ok || last.Close <= 0 || last.Close < e.minPrice {
		return outcome{skipped: true}
	}

	fs := features.Extract(series)
	if !features.Finite(fs) {
		return outcome{err: &ComputeError{ISIN: inst.ISIN, Stage: "features", Err: ErrNonFiniteFeatures}}
	}

	recent := series.Since(last.Date.AddDate(0, 0, -e.screeningDays))
	out.signals = screener.Screen(inst, screener.Measure(recent), th.Screener)

	fc, err := model.Predict(fs)
	if err != nil {
		e.l.Warn("prediction excluded",
			applogger.String("isin", inst.ISIN),
			applogger.Error(err),
		)
		return out
	}
	verdict := filter.Evaluate(fs, th.Filter)
	out.prediction = &models.PredictionResult{
		Instrument:     inst,
		Probability12:  fc.Probability,
		ExpectedReturn: fc.ExpectedReturn,
		FiltersPass:    verdict.Passed,
		FilterFlags:    verdict.Flags,
		Action:         filter.ActionFor(verdict.Passed, verdict.Flags),
	}
	return out
}

func (e *Engine) merge(res *models.RunResult, inst models.Instrument, out outcome) {
	switch {
	case out.err != nil:
		res.Summary.Skipped++
		res.Summary.Failed++
		e.l.Error("instrument failed",
			applogger.String("isin", inst.ISIN),
			applogger.Error(out.err),
		)
		e.record("failed")
	case out.skipped:
		res.Summary.Skipped++
		e.l.Debug("instrument skipped", applogger.String("isin", inst.ISIN))
		e.record("skipped")
	default:
		res.Summary.Processed++
		for _, s := range out.signals {
			res.Signals[s.Category] = append(res.Signals[s.Category], s)
		}
		if out.prediction != nil {
			res.Predictions = append(res.Predictions, *out.prediction)
			if e.metrics != nil {
				e.metrics.RecordAction(string(out.prediction.Action))
			}
		}
		e.record("processed")
	}
}

func (e *Engine) record(result string) {
	if e.metrics != nil {
		e.metrics.RecordInstrument(result)
	}
}

// gatePredictions drops forecasts under the probability floor and orders
// the rest by probability, then ISIN.
func gatePredictions(preds []models.PredictionResult, q Quant) []models.PredictionResult {
	out := make([]models.PredictionResult, 0, len(preds))
	for _, p := range preds {
		if p.Probability12 >= q.MinProbability {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Probability12 != out[j].Probability12 {
			return out[i].Probability12 > out[j].Probability12
		}
		return out[i].Instrument.ISIN < out[j].Instrument.ISIN
	})
	if q.MaxResults > 0 && len(out) > q.MaxResults {
		out = out[:q.MaxResults]
	}
	return out
}
