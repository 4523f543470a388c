package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id" // string
)

// X-Request-IDを引き継ぐ。無ければuuidを振る
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, rid)
			c.Response().Header().Set(HeaderRequestID, rid)
			return next(c)
		}
	}
}

func requestIDFrom(c echo.Context) string {
	rid, _ := c.Get(CtxRequestIDKey).(string)
	return rid
}

func userIDFrom(c echo.Context) *int64 {
	uid, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || uid <= 0 {
		return nil
	}
	return &uid
}
