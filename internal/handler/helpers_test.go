package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// TokenVersionGuard用（FindByIDだけ使う）
type userRepoStub struct {
	repository.UserRepository
}

func (userRepoStub) FindByID(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, IsActive: true}, nil
}

type testAPI struct {
	e   *echo.Echo
	api *echo.Group
	cfg config.Config
}

func newTestAPI() *testAPI {
	e := echo.New()
	return &testAPI{e: e, api: e.Group("/api"), cfg: config.Config{JWTSecret: testSecret}}
}

func (a *testAPI) users() repository.UserRepository {
	return userRepoStub{}
}

type reqOpt func(r *http.Request)

func asUser(t *testing.T, id int64) reqOpt {
	return withToken(t, id, "USER")
}

func asAdmin(t *testing.T, id int64) reqOpt {
	return withToken(t, id, "ADMIN")
}

func withToken(t *testing.T, id int64, role string) reqOpt {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": id, "role": role, "tv": 0, "iat": 1, "exp": 9999999999,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+raw) }
}

func withCookie(ck *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(ck) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (a *testAPI) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

type errBody struct {
	Error string `json:"error"`
}

type msgBody struct {
	Message string `json:"message"`
}
