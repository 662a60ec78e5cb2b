package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/screener"
)

var epoch = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

type fakeHistory struct {
	mu     sync.Mutex
	series map[string]models.PriceSeries
	errs   map[string]error
	panics map[string]bool
	calls  int
	onCall func()
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		series: map[string]models.PriceSeries{},
		errs:   map[string]error{},
		panics: map[string]bool{},
	}
}

func (f *fakeHistory) GetSeries(_ context.Context, isin string, _ int) (models.PriceSeries, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onCall
	s, err, boom := f.series[isin], f.errs[isin], f.panics[isin]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if boom {
		panic("corrupt row")
	}
	return s, err
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func fixedClock() func() time.Time { return func() time.Time { return epoch } }

// trendSeries builds n daily bars ending at epoch, with close moving by step
// each day and a small deterministic wobble.
func trendSeries(isin string, n int, start, step float64) models.PriceSeries {
	pts := make([]models.PricePoint, n)
	first := epoch.AddDate(0, 0, -(n - 1))
	for i := range pts {
		c := start + float64(i)*step + float64(i%3)*0.1
		pts[i] = models.PricePoint{
			Date:   first.AddDate(0, 0, i),
			Open:   c - 0.05,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 50000 + float64(i%7)*1000,
		}
	}
	return models.PriceSeries{ISIN: isin, Points: pts}
}

func flatSeries(isin string, n int, price float64) models.PriceSeries {
	pts := make([]models.PricePoint, n)
	first := epoch.AddDate(0, 0, -(n - 1))
	for i := range pts {
		pts[i] = models.PricePoint{Date: first.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 10000}
	}
	return models.PriceSeries{ISIN: isin, Points: pts}
}

func permissive() Thresholds {
	th := DefaultThresholds()
	th.Quant.MinProbability = 0
	return th
}

func TestRunFlatInstrument(t *testing.T) {
	h := newFakeHistory()
	h.series["FLAT"] = flatSeries("FLAT", 800, 100)
	e := NewEngine(h, WithClock(fixedClock()))

	res, err := e.Run(context.Background(), []models.Instrument{{ISIN: "FLAT", Name: "Flat"}}, permissive(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range models.Categories {
		list, ok := res.Signals[c]
		if !ok || list == nil {
			t.Fatalf("category %s missing from result", c)
		}
		if len(list) != 0 {
			t.Fatalf("flat series admitted into %s", c)
		}
	}
	if len(res.Predictions) != 1 {
		t.Fatalf("predictions = %d, want 1", len(res.Predictions))
	}
	p := res.Predictions[0]
	if p.Probability12 < 0 || p.Probability12 > 1 {
		t.Fatalf("probability %v out of range", p.Probability12)
	}
	if p.FiltersPass || p.Action == models.ActionBuy {
		t.Fatalf("flat series should not pass the filters: %+v", p)
	}
	hasTrend := false
	for _, f := range p.FilterFlags {
		if f == models.FlagTrendQuality {
			hasTrend = true
		}
	}
	if !hasTrend {
		t.Fatalf("flags = %v, want TrendQuality", p.FilterFlags)
	}
	if s := res.Summary; s.Processed != 1 || s.Skipped != 0 || s.Universe != 1 || s.Predicted != 1 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	h := newFakeHistory()
	var universe []models.Instrument
	for i := 0; i < 8; i++ {
		isin := fmt.Sprintf("XS%010d", i)
		h.series[isin] = trendSeries(isin, 300+i*20, 50+float64(i)*10, float64(i-4)*0.2)
		universe = append(universe, models.Instrument{ISIN: isin, Name: isin})
	}
	e := NewEngine(h, WithClock(fixedClock()))

	first, err := e.Run(context.Background(), universe, permissive(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := e.Run(context.Background(), universe, permissive(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("two passes over the same data differ:\n%s\n%s", a, b)
	}
}

func TestRunBudget(t *testing.T) {
	clock := &stepClock{now: epoch}
	h := newFakeHistory()
	h.onCall = func() { clock.Advance(time.Second) }
	var universe []models.Instrument
	for i := 0; i < 6; i++ {
		isin := fmt.Sprintf("B%d", i)
		h.series[isin] = trendSeries(isin, 300, 20, 0.1)
		universe = append(universe, models.Instrument{ISIN: isin})
	}
	e := NewEngine(h, WithClock(clock.Now), WithCheckEvery(1))

	res, err := e.Run(context.Background(), universe, permissive(), 2500*time.Millisecond)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := res.Summary
	if !s.BudgetExceeded {
		t.Fatal("budget not reported as exceeded")
	}
	if s.Processed != 3 || s.Skipped != 3 {
		t.Fatalf("processed=%d skipped=%d, want 3 and 3", s.Processed, s.Skipped)
	}
	if h.calls != 3 {
		t.Fatalf("history fetched %d times after the budget ran out", h.calls)
	}

	admitted := map[string]bool{"B0": true, "B1": true, "B2": true}
	if len(res.Predictions) != 3 {
		t.Fatalf("predictions = %d, want one per processed instrument", len(res.Predictions))
	}
	for _, p := range res.Predictions {
		if !admitted[p.Instrument.ISIN] {
			t.Fatalf("prediction for %s, which came after the budget ran out", p.Instrument.ISIN)
		}
	}
	for c, list := range res.Signals {
		for _, sig := range list {
			if !admitted[sig.Instrument.ISIN] {
				t.Fatalf("%s holds %s, which came after the budget ran out", c, sig.Instrument.ISIN)
			}
		}
	}
}

func TestRunBudgetNeverStopsFirstChunk(t *testing.T) {
	clock := &stepClock{now: epoch}
	h := newFakeHistory()
	h.onCall = func() { clock.Advance(time.Hour) }
	h.series["A"] = trendSeries("A", 40, 20, 0.1)
	h.series["B"] = trendSeries("B", 40, 20, 0.1)
	e := NewEngine(h, WithClock(clock.Now), WithCheckEvery(1))

	res, err := e.Run(context.Background(), []models.Instrument{{ISIN: "A"}, {ISIN: "B"}}, permissive(), time.Nanosecond)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.Processed != 1 || res.Summary.Skipped != 1 {
		t.Fatalf("summary = %+v", res.Summary)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	h := newFakeHistory()
	h.series["OK"] = trendSeries("OK", 300, 30, 0.05)
	h.errs["DOWN"] = errors.New("connection reset")
	h.panics["BOOM"] = true
	h.series["EMPTY"] = models.PriceSeries{ISIN: "EMPTY"}

	universe := []models.Instrument{{ISIN: "DOWN"}, {ISIN: "BOOM"}, {ISIN: "OK"}, {ISIN: "EMPTY"}}
	e := NewEngine(h, WithClock(fixedClock()))
	res, err := e.Run(context.Background(), universe, permissive(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := res.Summary
	if s.Processed != 1 || s.Skipped != 3 || s.Failed != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if len(res.Predictions) != 1 || res.Predictions[0].Instrument.ISIN != "OK" {
		t.Fatalf("predictions = %+v", res.Predictions)
	}
}

func TestRunSkipsPennyStocks(t *testing.T) {
	h := newFakeHistory()
	h.series["PENNY"] = trendSeries("PENNY", 300, 0.2, 0)
	e := NewEngine(h, WithClock(fixedClock()), WithMinPrice(5))
	res, err := e.Run(context.Background(), []models.Instrument{{ISIN: "PENNY"}}, permissive(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.Skipped != 1 || res.Summary.Failed != 0 || len(res.Predictions) != 0 {
		t.Fatalf("summary = %+v", res.Summary)
	}
}

func TestRunWorkersMatchSequential(t *testing.T) {
	h := newFakeHistory()
	var universe []models.Instrument
	for i := 0; i < 25; i++ {
		isin := fmt.Sprintf("W%03d", i)
		h.series[isin] = trendSeries(isin, 260+i*10, 10+float64(i), float64(i%5-2)*0.3)
		universe = append(universe, models.Instrument{ISIN: isin})
	}
	h.errs["W007"] = errors.New("timeout")

	seq, err := NewEngine(h, WithClock(fixedClock())).Run(context.Background(), universe, permissive(), 0)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	par, err := NewEngine(h, WithClock(fixedClock()), WithWorkers(4), WithCheckEvery(7)).Run(context.Background(), universe, permissive(), 0)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Fatal("parallel pass differs from sequential pass")
	}
}

func TestRunFillsOmittedThresholds(t *testing.T) {
	h := newFakeHistory()
	h.series["T"] = trendSeries("T", 300, 30, 0.05)
	universe := []models.Instrument{{ISIN: "T"}}
	e := NewEngine(h, WithClock(fixedClock()))

	tests := []struct {
		name string
		th   Thresholds
	}{
		{"zero value", Thresholds{}},
		{"screener top_n only", Thresholds{Screener: screener.Thresholds{TopN: 6}}},
		{"quant only", Thresholds{Quant: Quant{MinProbability: 0.4}}},
	}
	want, err := e.Run(context.Background(), universe, DefaultThresholds(), 0)
	if err != nil {
		t.Fatalf("Run with defaults: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := tt.th
			got, err := e.Run(context.Background(), universe, th, 0)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("partial thresholds gave a different pass than the defaults")
			}
			if th.Screener.VolumeSpikes.MinVolSpikePct != 0 {
				t.Fatal("Run filled defaults into the caller's thresholds")
			}
		})
	}
}

func TestRunRejectsInvalidThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.Quant.MinProbability = 2
	_, err := NewEngine(newFakeHistory()).Run(context.Background(), nil, th, 0)
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestGatePredictions(t *testing.T) {
	preds := []models.PredictionResult{
		{Instrument: models.Instrument{ISIN: "C"}, Probability12: 0.6},
		{Instrument: models.Instrument{ISIN: "A"}, Probability12: 0.6},
		{Instrument: models.Instrument{ISIN: "B"}, Probability12: 0.9},
		{Instrument: models.Instrument{ISIN: "D"}, Probability12: 0.2},
	}
	got := gatePredictions(preds, Quant{MinProbability: 0.4, MaxResults: 2})
	if len(got) != 2 || got[0].Instrument.ISIN != "B" || got[1].Instrument.ISIN != "A" {
		t.Fatalf("gated = %+v", got)
	}
}
