package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/infra/activity"
	"uptech/internal/infra/ratelimit"
	"uptech/internal/middleware"
	"uptech/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64  `json:"user_id"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *userRepoMock) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *userRepoMock) ListAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *userRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ repository.UserRepository = (*userRepoMock)(nil)

func mustMakeJWT(t *testing.T, secret string, sub int64, role string, tv int, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}
	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func okHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	tv, _ := c.Get(middleware.CtxTokenVersionKey).(int)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, TokenVersion: tv})
}

func TestAuthJWT(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	good := mustMakeJWT(t, cfg.JWTSecret, 123, "USER", 7, jwt.SigningMethodHS256)

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Token abc.def.ghi") }, http.StatusUnauthorized},
		{"bad signature", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mustMakeJWT(t, "wrong-secret", 1, "USER", 0, jwt.SigningMethodHS256))
		}, http.StatusUnauthorized},
		{"wrong alg", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mustMakeJWT(t, cfg.JWTSecret, 1, "USER", 0, jwt.SigningMethodHS512))
		}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+good) }, http.StatusOK},
		{"x-auth-token", func(r *http.Request) { r.Header.Set("x-auth-token", good) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: good}) }, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", okHandler, middleware.AuthJWT(cfg))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.setup(req)
			rec := runRequest(t, e, req)
			require.Equal(t, tc.status, rec.Code)

			if tc.status != http.StatusOK {
				assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
				return
			}
			var body mwOKResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, int64(123), body.UserID)
			assert.Equal(t, "USER", body.Role)
			assert.Equal(t, 7, body.TokenVersion)
		})
	}
}

func TestTokenVersionGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	t.Run("missing context", func(t *testing.T) {
		e := echo.New()
		e.GET("/protected", okHandler, middleware.TokenVersionGuard(new(userRepoMock)))

		rec := runRequest(t, e, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	for _, tc := range []struct {
		name   string
		user   *model.User
		status int
	}{
		{"mismatch", &model.User{ID: 1, TokenVersion: 1, IsActive: true}, http.StatusUnauthorized},
		{"inactive", &model.User{ID: 1, TokenVersion: 0, IsActive: false}, http.StatusUnauthorized},
		{"deleted", nil, http.StatusUnauthorized},
		{"match", &model.User{ID: 1, TokenVersion: 0, IsActive: true}, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			users := new(userRepoMock)
			users.On("FindByID", mock.Anything, int64(1)).Return(tc.user, nil)

			e := echo.New()
			e.GET("/protected", okHandler, middleware.AuthJWT(cfg), middleware.TokenVersionGuard(users))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+mustMakeJWT(t, cfg.JWTSecret, 1, "USER", 0, jwt.SigningMethodHS256))
			rec := runRequest(t, e, req)

			assert.Equal(t, tc.status, rec.Code)
			users.AssertExpectations(t)
		})
	}
}

func TestAdminRoleGuard(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	for role, status := range map[string]int{"USER": http.StatusForbidden, "ADMIN": http.StatusOK} {
		e := echo.New()
		e.GET("/admin", okHandler, middleware.AuthJWT(cfg), middleware.AdminRoleGuard())

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mustMakeJWT(t, cfg.JWTSecret, 9, role, 0, jwt.SigningMethodHS256))
		rec := runRequest(t, e, req)

		assert.Equal(t, status, rec.Code, role)
		if status == http.StatusForbidden {
			assert.Equal(t, "admin only", decodeMWError(t, rec).Error)
		}
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(middleware.RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(middleware.CtxRequestIDKey).(string))
	})

	rec := runRequest(t, e, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(middleware.HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "abc-123")
	rec = runRequest(t, e, req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.HeaderRequestID))
}

type logLine struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Status    int    `json:"status"`
	Method    string `json:"method"`
	Panic     string `json:"panic"`
}

func TestRequestLogger_And_Recover(t *testing.T) {
	var buf safeBuffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.Recover(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := runRequest(t, e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = runRequest(t, e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeMWError(t, rec).Error)

	lines := buf.lines(t)
	require.Len(t, lines, 3)
	assert.Equal(t, "request completed", lines[0].Message)
	assert.Equal(t, http.StatusNoContent, lines[0].Status)
	assert.NotEmpty(t, lines[0].RequestID)

	assert.Equal(t, "panic recovered", lines[1].Message)
	assert.Equal(t, "boom", lines[1].Panic)

	assert.Equal(t, "error", lines[2].Level)
	assert.Equal(t, http.StatusInternalServerError, lines[2].Status)
}

type recorderMock struct{ mock.Mock }

func (m *recorderMock) Record(ctx context.Context, e activity.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func TestActivityLog(t *testing.T) {
	rec := new(recorderMock)
	rec.On("Record", mock.Anything, mock.MatchedBy(func(e activity.Entry) bool {
		return e.Route == "/items/:id" && e.StatusCode == http.StatusCreated && e.Method == http.MethodPost &&
			e.UserID != nil && *e.UserID == 5 && e.RequestID != ""
	})).Return(errors.New("mongo down"))

	e := echo.New()
	e.Use(middleware.RequestID(), middleware.ActivityLog(rec, zerolog.Nop()))
	e.POST("/items/:id", func(c echo.Context) error {
		c.Set(middleware.CtxUserIDKey, int64(5))
		return c.NoContent(http.StatusCreated)
	})

	// 保存失敗でもレスポンスは変わらない
	res := runRequest(t, e, httptest.NewRequest(http.MethodPost, "/items/3", nil))
	assert.Equal(t, http.StatusCreated, res.Code)
	rec.AssertExpectations(t)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewRedisLimiter(client, 2, time.Minute)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		middleware.RateLimit(limiter, "login", zerolog.Nop()))

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, runRequest(t, e, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Redis停止時は通す
	mr.Close()
	res := runRequest(t, e, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, res.Code)
}
