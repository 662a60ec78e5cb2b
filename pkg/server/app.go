package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/usecase"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
)

// Runner executes one screening pass.
type Runner interface {
	RunOnce(ctx context.Context) (*models.RunResult, error)
}

// Closer is a resource released at shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	l          *applogger.Logger
	runner     Runner
	httpServer *xhttp.Server

	// closed in order after the HTTP server stops
	closers []namedCloser
}

type namedCloser struct {
	name string
	c    Closer
}

// New creates an App. Nil closers are skipped at shutdown.
func New(l *applogger.Logger, runner Runner, httpServer *xhttp.Server) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{l: l, runner: runner, httpServer: httpServer}
}

// OnShutdown registers a resource to close after the HTTP server stops.
func (a *App) OnShutdown(name string, c Closer) {
	if c == nil {
		return
	}
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Run starts the ops server and executes one pass. With once set it returns
// as soon as the pass finishes; otherwise it keeps serving until SIGINT,
// SIGTERM, ctx cancellation or a listen failure.
func (a *App) Run(ctx context.Context, once bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	passErr := a.pass(ctx)
	if once {
		a.shutdown()
		return passErr
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case serveErr = <-a.httpServer.Errors():
	}
	a.shutdown()
	return serveErr
}

func (a *App) pass(ctx context.Context) error {
	res, err := a.runner.RunOnce(ctx)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		a.l.Warn("pass skipped, run lock held elsewhere")
		return nil
	case err != nil:
		a.l.Error("pass failed", applogger.Error(err))
		return err
	}

	s := res.Summary
	a.l.Info("pass complete",
		applogger.Int("universe", s.Universe),
		applogger.Int("processed", s.Processed),
		applogger.Int("skipped", s.Skipped),
		applogger.Int("failed", s.Failed),
		applogger.Int("predicted", s.Predicted),
		applogger.Bool("budget_exceeded", s.BudgetExceeded),
		applogger.Duration("elapsed_ms", s.Elapsed),
	)
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	a.l.Info("shutting down...")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// final flush goes out through the producer, so it must precede it
	a.l.RemoveCollector()

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
