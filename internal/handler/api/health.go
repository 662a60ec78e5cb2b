package api

import (
	"context"
	"time"

	xhttp "SignalDesk/pkg/http"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose reachability gates readiness.
type Pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

// Health answers 200 when every dependency pings, 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.deps))
	var failed error
	for name, dep := range h.deps {
		if err := dep.Health(ctx); err != nil {
			status[name] = err.Error()
			failed = err
			continue
		}
		status[name] = "ok"
	}
	if failed != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewUnavailable("ERR_DEPENDENCY", "dependency unhealthy", failed))
	}
	return xhttp.SuccessResponse(c, status)
}
