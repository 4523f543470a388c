package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"uptech/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int

	// ログイン時に発行するcookie
	AuthCookieName = "auth_token"
	authHeaderAlt  = "x-auth-token"
)

var errInvalidToken = errors.New("invalid token")

// subは数値でも文字列でも受ける
type accessClaims struct {
	Sub  json.Number `json:"sub"`
	Role string      `json:"role"`
	TV   *int        `json:"tv"`
	jwt.RegisteredClaims
}

type identity struct {
	userID int64
	role   string
	tv     int
}

// トークンは Authorization: Bearer / x-auth-token / auth_token cookie の順に探す
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	key := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			id, err := verify(key, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, id.userID)
			c.Set(CtxUserRoleKey, id.role)
			c.Set(CtxTokenVersionKey, id.tv)
			return next(c)
		}
	}
}

// Authorizationがあるのに形式が違う場合は他を見ない
func tokenFrom(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, tok, ok := strings.Cut(authz, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(tok)
	}
	if tok := strings.TrimSpace(r.Header.Get(authHeaderAlt)); tok != "" {
		return tok
	}
	if ck, err := r.Cookie(AuthCookieName); err == nil {
		return ck.Value
	}
	return ""
}

func verify(key []byte, raw string) (identity, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// HS256以外は拒否
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidToken
		}
		return key, nil
	})
	if err != nil {
		return identity{}, err
	}

	userID, err := claims.Sub.Int64()
	if err != nil || userID <= 0 {
		return identity{}, errInvalidToken
	}
	if claims.Role == "" || claims.TV == nil || *claims.TV < 0 {
		return identity{}, errInvalidToken
	}
	return identity{userID: userID, role: claims.Role, tv: *claims.TV}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
