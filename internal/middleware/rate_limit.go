package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// IP+ルート単位で制限する。Redis障害時は通す（fail-open）
func RateLimit(l Limiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := scope + ":" + c.RealIP()
			ok, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}
			if !ok {
				return c.JSON(http.StatusTooManyRequests, errorJSON("Too Many Requests"))
			}
			return next(c)
		}
	}
}
