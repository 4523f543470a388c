package middleware

import (
	"context"
	"net/http"

	"uptech/internal/domain/model"

	"github.com/labstack/echo/v4"
)

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthJWTの後ろに置く。
// ロール変更・パスワード変更・強制ログアウトでtoken_versionが進むと、古いtvのトークンは401
func TokenVersionGuard(users userFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(CtxUserIDKey).(int64)
			tv, hasTV := c.Get(CtxTokenVersionKey).(int)
			if userID <= 0 || !hasTV {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// 削除・無効化済みのユーザーも同じ扱い
			u, err := users.FindByID(c.Request().Context(), userID)
			if err != nil || u == nil || !u.IsActive || u.TokenVersion != tv {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}
