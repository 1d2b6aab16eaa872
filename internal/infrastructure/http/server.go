package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// Server owns the listener lifecycle of an echo instance.
type Server struct {
	echo            *echo.Echo
	addr            string
	shutdownTimeout time.Duration
	log             zerolog.Logger
}

func NewServer(e *echo.Echo, port string, log zerolog.Logger) *Server {
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	return &Server{
		echo:            e,
		addr:            ":" + port,
		shutdownTimeout: defaultShutdownTimeout,
		log:             log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.log.Info().Msg("http server shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
