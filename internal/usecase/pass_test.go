package usecase

import (
	"context"
	"errors"
	"testing"

	"SignalDesk/internal/domain/models"
)

type fakeUniverse struct {
	list []models.Instrument
	err  error
}

func (u fakeUniverse) ListInstruments(context.Context) ([]models.Instrument, error) {
	return u.list, u.err
}

type fakeSnapshots struct {
	locked   bool
	released int
	saved    *models.RunResult
	saveErr  error
}

func (s *fakeSnapshots) Save(_ context.Context, res *models.RunResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = res
	return nil
}

func (s *fakeSnapshots) Latest(context.Context) (*models.RunResult, error) {
	if s.saved == nil {
		return nil, errors.New("no snapshot")
	}
	return s.saved, nil
}

func (s *fakeSnapshots) AcquireRunLock(context.Context) (bool, error) {
	if s.locked {
		return false, nil
	}
	s.locked = true
	return true, nil
}

func (s *fakeSnapshots) ReleaseRunLock(context.Context) error {
	s.locked = false
	s.released++
	return nil
}

type fakePublisher struct {
	runs []*models.RunResult
	err  error
}

func (p *fakePublisher) PublishRun(_ context.Context, res *models.RunResult) error {
	p.runs = append(p.runs, res)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	instruments map[string]int
	errors      map[string]int
	runs        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{instruments: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordInstrument(o string)     { m.instruments[o]++ }
func (m *fakeMetrics) RecordAction(string)           {}
func (m *fakeMetrics) RecordRun(models.RunSummary)   { m.runs++ }
func (m *fakeMetrics) RecordError(kind string)       { m.errors[kind]++ }
func (m *fakeMetrics) RecordLatency(string, float64) {}

func TestPassRunnerHappyPath(t *testing.T) {
	h := newFakeHistory()
	h.series["A"] = trendSeries("A", 300, 40, 0.1)
	h.errs["B"] = errors.New("gone")
	snaps := &fakeSnapshots{}
	pub := &fakePublisher{}
	m := newFakeMetrics()

	engine := NewEngine(h, WithClock(fixedClock()), WithMetrics(m))
	runner := NewPassRunner(engine, fakeUniverse{list: []models.Instrument{{ISIN: "A"}, {ISIN: "B"}}}, snaps, pub, m, nil, permissive(), 0)

	res, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if snaps.saved != res || len(pub.runs) != 1 {
		t.Fatal("result was not stored and published")
	}
	if snaps.locked || snaps.released != 1 {
		t.Fatalf("lock not released: locked=%v released=%d", snaps.locked, snaps.released)
	}
	if m.instruments["processed"] != 1 || m.instruments["failed"] != 1 || m.runs != 1 {
		t.Fatalf("metrics = %+v runs=%d", m.instruments, m.runs)
	}
	latest, err := runner.Latest(context.Background())
	if err != nil || latest != res {
		t.Fatalf("Latest = %v, %v", latest, err)
	}
}

func TestPassRunnerRespectsLock(t *testing.T) {
	snaps := &fakeSnapshots{locked: true}
	runner := NewPassRunner(NewEngine(newFakeHistory()), fakeUniverse{}, snaps, nil, nil, nil, permissive(), 0)
	if _, err := runner.RunOnce(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
	if snaps.released != 0 {
		t.Fatal("released a lock it never held")
	}
}

func TestPassRunnerPublishFailureKeepsResult(t *testing.T) {
	h := newFakeHistory()
	h.series["A"] = trendSeries("A", 120, 40, 0.1)
	pub := &fakePublisher{err: errors.New("broker down")}
	m := newFakeMetrics()
	runner := NewPassRunner(NewEngine(h, WithClock(fixedClock())), fakeUniverse{list: []models.Instrument{{ISIN: "A"}}}, &fakeSnapshots{}, pub, m, nil, permissive(), 0)

	res, err := runner.RunOnce(context.Background())
	if err != nil || res == nil {
		t.Fatalf("RunOnce = %v, %v", res, err)
	}
	if m.errors["publish"] != 1 {
		t.Fatalf("errors = %v", m.errors)
	}
}

func TestPassRunnerUniverseError(t *testing.T) {
	snaps := &fakeSnapshots{}
	runner := NewPassRunner(NewEngine(newFakeHistory()), fakeUniverse{err: errors.New("db down")}, snaps, nil, nil, nil, permissive(), 0)
	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if snaps.locked {
		t.Fatal("lock leaked after a failed pass")
	}
}
