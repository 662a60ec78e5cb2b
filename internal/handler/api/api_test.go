package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/usecase"
	xlogger "SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubRuns struct {
	latest *models.RunResult
	err    error
	runErr error
}

func (s *stubRuns) RunOnce(context.Context) (*models.RunResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.latest, nil
}

func (s *stubRuns) Latest(context.Context) (*models.RunResult, error) {
	return s.latest, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Health(context.Context) error { return p.err }

func serve(t *testing.T, h interface{ RegisterRoutes(*echo.Echo) }, method, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec, body
}

func sampleRun() *models.RunResult {
	res := models.NewRunResult()
	res.Summary.Universe = 4
	res.Signals[models.CategoryClimbers5D] = []models.SignalResult{{Instrument: models.Instrument{ISIN: "A"}, Category: models.CategoryClimbers5D}}
	res.Signals[models.CategoryTightRange] = []models.SignalResult{{Instrument: models.Instrument{ISIN: "B"}, Category: models.CategoryTightRange}}
	res.Predictions = []models.PredictionResult{
		{Instrument: models.Instrument{ISIN: "A"}, Probability12: 0.8},
		{Instrument: models.Instrument{ISIN: "B"}, Probability12: 0.6},
	}
	return res
}

func TestLatestRunFiltersView(t *testing.T) {
	h := NewRunsHandler(xlogger.Nop(), &stubRuns{latest: sampleRun()})
	rec, body := serve(t, h, http.MethodGet, "/api/v1/runs/latest?category=climbers_5d&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var data models.RunResult
	if err := json.Unmarshal(body["data"], &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Signals) != 1 || len(data.Signals[models.CategoryClimbers5D]) != 1 {
		t.Fatalf("signals = %+v", data.Signals)
	}
	if len(data.Predictions) != 1 || data.Summary.Universe != 4 {
		t.Fatalf("view = %+v", data)
	}
}

func TestLatestRunValidation(t *testing.T) {
	h := NewRunsHandler(xlogger.Nop(), &stubRuns{latest: sampleRun()})
	for _, target := range []string{
		"/api/v1/runs/latest?category=moonshots",
		"/api/v1/runs/latest?limit=-1",
		"/api/v1/runs/latest?limit=abc",
	} {
		rec, _ := serve(t, h, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestLatestRunMissing(t *testing.T) {
	h := NewRunsHandler(xlogger.Nop(), &stubRuns{err: domrepo.ErrNoSnapshot})
	rec, _ := serve(t, h, http.MethodGet, "/api/v1/runs/latest")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTriggerConflict(t *testing.T) {
	h := NewRunsHandler(xlogger.Nop(), &stubRuns{runErr: usecase.ErrRunInProgress})
	rec, _ := serve(t, h, http.MethodPost, "/api/v1/runs")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}

	h = NewRunsHandler(xlogger.Nop(), &stubRuns{latest: sampleRun()})
	rec, _ = serve(t, h, http.MethodPost, "/api/v1/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	ok := NewHealthHandler(map[string]Pinger{"store": stubPinger{}})
	if rec, _ := serve(t, ok, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", rec.Code)
	}
	bad := NewHealthHandler(map[string]Pinger{"store": stubPinger{err: errors.New("down")}})
	if rec, _ := serve(t, bad, http.MethodGet, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d", rec.Code)
	}
}
