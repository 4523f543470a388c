package handler

import (
	"net/http"
	"strconv"

	"uptech/internal/config"
	"uptech/internal/middleware"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 副作用（通知・メール・イベント）の失敗件数
const HeaderEffectFailures = "X-Effect-Failures"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 主処理は成功。失敗した副作用があれば件数をヘッダーに出す
func writeEffects(c echo.Context, rep usecase.EffectReport) {
	if n := rep.Failed(); n > 0 {
		c.Response().Header().Set(HeaderEffectFailures, strconv.Itoa(n))
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 未指定ならdefを使う
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryInt64Ptr(c echo.Context, name string) (*int64, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// JWT必須 + token_version一致
func userGuards(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
}

// 上に加えてADMIN限定
func adminGuards(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return append(userGuards(cfg, userRepo), middleware.AdminRoleGuard())
}

// 公開フォーム（ログイン・問い合わせ等）のレート制限
type Throttle func(scope string) echo.MiddlewareFunc

func NoThrottle(string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
