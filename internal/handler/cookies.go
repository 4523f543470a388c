package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"uptech/internal/config"

	"github.com/labstack/echo/v4"
)

const (
	cartCookieName        = "cart"
	preferencesCookieName = "preferences"
	cookieTTL             = 30 * 24 * time.Hour
)

// cookieの値はJSONをbase64urlにしたもの
func setJSONCookie(c echo.Context, cfg config.CookieConfig, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cookieTTL.Seconds()),
		Expires:  time.Now().Add(cookieTTL),
	})
	return nil
}

// 無い・壊れている場合は false
func readJSONCookie(c echo.Context, name string, dst any) bool {
	ck, err := c.Cookie(name)
	if err != nil || ck.Value == "" {
		return false
	}
	b, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func clearCookie(c echo.Context, cfg config.CookieConfig, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
