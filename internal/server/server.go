package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"uptech/internal/config"
	"uptech/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	e    *echo.Echo
	addr string
	log  zerolog.Logger
}

// 共通ミドルウェアまで組んだechoを用意する。ルートは RegisterRoutes で足す
func New(cfg config.Config, log zerolog.Logger, activity middleware.ActivityRecorder) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recover(log),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderContentType,
				echo.HeaderAuthorization,
				"x-auth-token",
				middleware.HeaderRequestID,
				"X-Idempotency-Key",
			},
			ExposeHeaders: []string{middleware.HeaderRequestID, "X-Effect-Failures"},
		}),
		middleware.ActivityLog(activity, log),
	)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{e: e, addr: ":" + cfg.Port, log: log}
}

func (s *Server) Echo() *echo.Echo {
	return s.e
}

// ctxがキャンセルされるまで待ち受け、その後 graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("server starting")
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
