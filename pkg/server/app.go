package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	applogger "KisTrader/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP serving, signal
// handling, and graceful teardown of infrastructure clients.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	closers     []io.Closer
}

// New creates a new App instance.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler) *App {
	return &App{
		cfg:         cfg,
		log:         l,
		httpHandler: handler,
	}
}

// RegisterCloser adds an infrastructure client to close on shutdown.
// Closers run in reverse registration order.
func (a *App) RegisterCloser(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.log, a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("mode", a.cfg.KIS.Mode),
		applogger.Bool("mock", a.cfg.KIS.Mock),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops the HTTP server and closes infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
