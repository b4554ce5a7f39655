package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"prdeck/internal/logging"
)

// Serve runs handler on addr until ctx is cancelled, then shuts down,
// waiting at most shutdownTimeout for open requests.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:      handler,
		Addr:         addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Info("Starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logging.Logger.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
