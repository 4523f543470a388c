package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// リクエスト完了時に1行出す
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// echoのエラーハンドラへ渡してステータスを確定させる
				c.Error(err)
			}

			status := c.Response().Status
			ev := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				ev = log.Error()
			case status >= http.StatusBadRequest:
				ev = log.Warn()
			}

			ev = ev.
				Str("request_id", requestIDFrom(c)).
				Str("method", c.Request().Method).
				Str("url", c.Request().URL.String()).
				Int("status", status).
				Dur("latency", time.Since(start))
			if uid := userIDFrom(c); uid != nil {
				ev = ev.Int64("user_id", *uid)
			}
			if f := c.Response().Header().Get("X-Effect-Failures"); f != "" {
				ev = ev.Str("effect_failures", f)
			}
			ev.Msg("request completed")
			return nil
		}
	}
}

// panicを500に変換する
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("request_id", requestIDFrom(c)).
						Str("method", c.Request().Method).
						Str("url", c.Request().URL.String()).
						Str("panic", fmt.Sprint(r)).
						Msg("panic recovered")
					if !c.Response().Committed {
						err = c.JSON(http.StatusInternalServerError, errorJSON("Internal Server Error"))
					}
				}
			}()
			return next(c)
		}
	}
}
