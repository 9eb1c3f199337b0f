package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/config"
)

const defaultShutdownTimeout = 10 * time.Second

// Start serves HTTP in the background and returns a channel closed once a
// termination signal arrives. The caller then runs Stop.
func (a *App) Start() <-chan struct{} {
	terminated := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		slog.Info("termination signal received, shutting down")

		close(terminated)
	}()

	return terminated
}

// Serve runs the HTTP server on l. Used by tests that need a random port.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// ShutdownTimeout bounds Stop. Deliveries still queued when it elapses are
// abandoned.
func (a *App) ShutdownTimeout() time.Duration {
	return config.SecondOr(a.config, "app.server.shutdown_timeout_seconds", defaultShutdownTimeout)
}

// Stop drains HTTP traffic, cancels background loops such as the session
// sweep, waits for in-flight deliveries within ctx and then closes resources.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown http server", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for background tasks", "running", a.goroutine.Running())
	if err := a.goroutine.WaitContext(ctx); err != nil {
		slog.ErrorContext(ctx, "background tasks did not finish cleanly", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
