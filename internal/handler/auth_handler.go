package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"uptech/internal/config"
	"uptech/internal/middleware"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (usecase.UserDTO, usecase.EffectReport, error)
	VerifyEmail(ctx context.Context, userID int64, token string) (usecase.EffectReport, error)
	VerifyPhone(ctx context.Context, email string, code string) error
	Login(ctx context.Context, email string, password string) (usecase.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) (usecase.EffectReport, error)
	ResetPassword(ctx context.Context, token string, newPassword string) (usecase.EffectReport, error)
}

// /api/auth
type AuthHandler struct {
	uc     AuthService
	cookie config.CookieConfig
}

func NewAuthHandler(uc AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie}
}

type registerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyPhoneRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type registerResponse struct {
	Message string          `json:"message"`
	User    usecase.UserDTO `json:"user"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, throttle Throttle) {
	g := api.Group("/auth")

	g.POST("/register", h.register, throttle("register"))
	g.GET("/verify-email", h.verifyEmail)
	g.POST("/verify-phone", h.verifyPhone, throttle("verify-phone"))
	g.POST("/login", h.login, throttle("login"))
	g.POST("/logout", h.logout)
	g.POST("/request-password-reset", h.requestPasswordReset, throttle("password-reset"))
	g.POST("/reset-password/:token", h.resetPassword)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	user, rep, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusCreated, registerResponse{
		Message: "registered, please verify your email",
		User:    user,
	})
}

func (h *AuthHandler) verifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	userID, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if token == "" || err != nil || userID <= 0 {
		return badRequest(c, "invalid or expired token")
	}

	rep, err := h.uc.VerifyEmail(c.Request().Context(), userID, token)
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "email verified"})
}

func (h *AuthHandler) verifyPhone(c echo.Context) error {
	var req verifyPhoneRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.VerifyPhone(c.Request().Context(), req.Email, req.Code); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "phone verified"})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	// bodyとcookieの両方で返す
	h.setAuthCookie(c, out.Token.AccessToken, time.Duration(out.Token.ExpiresIn)*time.Second)
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	h.setAuthCookie(c, "", -1)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	rep, err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	// 未登録でも同じ応答
	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "if the email exists, a reset link has been sent"})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	rep, err := h.uc.ResetPassword(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "password has been reset"})
}

// ttl<0 で削除
func (h *AuthHandler) setAuthCookie(c echo.Context, value string, ttl time.Duration) {
	ck := &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.CookieDomain,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.MaxAge = int(ttl.Seconds())
		ck.Expires = time.Now().Add(ttl)
	}
	c.SetCookie(ck)
}
