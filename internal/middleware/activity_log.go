package middleware

import (
	"context"
	"time"

	"uptech/internal/infra/activity"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry) error
}

// レスポンス後にアクセス記録を保存する。保存失敗はwarnログのみ
func ActivityLog(rec ActivityRecorder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			e := activity.Entry{
				RequestID:  requestIDFrom(c),
				UserID:     userIDFrom(c),
				Method:     c.Request().Method,
				Route:      c.Path(),
				IP:         c.RealIP(),
				StatusCode: status,
				LatencyMs:  time.Since(start).Milliseconds(),
				Timestamp:  start.UTC(),
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
			defer cancel()
			if rerr := rec.Record(ctx, e); rerr != nil {
				log.Warn().Err(rerr).Str("request_id", e.RequestID).Msg("activity record failed")
			}
			return err
		}
	}
}
