package api

import (
	"context"
	"errors"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/usecase"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunService is the pass runner as seen by HTTP.
type RunService interface {
	RunOnce(ctx context.Context) (*models.RunResult, error)
	Latest(ctx context.Context) (*models.RunResult, error)
}

// LatestRunRequest narrows the latest snapshot.
type LatestRunRequest struct {
	Category string `query:"category" validate:"omitempty,oneof=volume_spikes deep_pullbacks capitulated decliners_5d climbers_5d tight_range"`
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

type RunsHandler struct {
	logger *xlogger.Logger
	runs   RunService
}

func NewRunsHandler(logger *xlogger.Logger, runs RunService) *RunsHandler {
	return &RunsHandler{logger: logger, runs: runs}
}

func (h *RunsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/runs")
	g.GET("/latest", h.Latest)
	g.POST("", h.Trigger)
}

func (h *RunsHandler) Latest(c echo.Context) error {
	req := &LatestRunRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runs.Latest(c.Request().Context())
	if err != nil {
		if errors.Is(err, domrepo.ErrNoSnapshot) {
			return xhttp.AppErrorResponse(c, xhttp.NewNotFound("ERR_NO_RUN", "no pass has completed yet", err))
		}
		h.logger.Error("load latest run", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, view(res, models.Category(req.Category), req.Limit))
}

// Trigger runs a pass synchronously.
func (h *RunsHandler) Trigger(c echo.Context) error {
	res, err := h.runs.RunOnce(c.Request().Context())
	if err != nil {
		if errors.Is(err, usecase.ErrRunInProgress) {
			return xhttp.AppErrorResponse(c, xhttp.NewConflict("ERR_RUN_IN_PROGRESS", "a pass is already running", err))
		}
		h.logger.Error("triggered pass failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res.Summary)
}

// view trims a snapshot for the response without touching the stored copy.
func view(res *models.RunResult, category models.Category, limit int) *models.RunResult {
	out := &models.RunResult{
		Signals: make(map[models.Category][]models.SignalResult),
		Summary: res.Summary,
	}
	for c, list := range res.Signals {
		if category != "" && c != category {
			continue
		}
		out.Signals[c] = list
	}
	out.Predictions = res.Predictions
	if len(out.Predictions) > limit {
		out.Predictions = out.Predictions[:limit]
	}
	return out
}
