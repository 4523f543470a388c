package handler

import (
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"

	"github.com/labstack/echo/v4"
)

// 言語・テーマはcookieだけに持つ
type Preferences struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

type PreferencesHandler struct {
	cookie config.CookieConfig
}

func NewPreferencesHandler(cookie config.CookieConfig) *PreferencesHandler {
	return &PreferencesHandler{cookie: cookie}
}

func (h *PreferencesHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/preferences")

	g.POST("/save", h.save, userGuards(cfg, userRepo)...)
	g.GET("/get", h.get)
}

func (h *PreferencesHandler) save(c echo.Context) error {
	var req Preferences
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	var current Preferences
	readJSONCookie(c, preferencesCookieName, &current)
	if current == req {
		return c.JSON(http.StatusOK, SuccessResponse{Message: "No changes detected in preferences."})
	}

	if err := setJSONCookie(c, h.cookie, preferencesCookieName, req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Preferences updated successfully."})
}

func (h *PreferencesHandler) get(c echo.Context) error {
	var prefs Preferences
	if _, err := c.Cookie(preferencesCookieName); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "No preferences found."})
	}
	if !readJSONCookie(c, preferencesCookieName, &prefs) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to parse preferences."})
	}
	return c.JSON(http.StatusOK, prefs)
}
