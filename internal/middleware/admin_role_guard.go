package middleware

import (
	"net/http"

	"uptech/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// roleが無ければ401、ADMIN以外は403
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch role, _ := c.Get(CtxUserRoleKey).(string); {
			case role == "":
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			case model.Role(role) != model.RoleAdmin:
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}
