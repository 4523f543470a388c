package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int64) (usecase.UserDTO, error)
	UpdateProfile(ctx context.Context, userID int64, in usecase.UpdateProfileInput) (usecase.UserDTO, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) (usecase.EffectReport, error)
}

// /api/users
type UserHandler struct {
	uc UserService
}

func NewUserHandler(uc UserService) *UserHandler {
	return &UserHandler{uc: uc}
}

type updateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *UserHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/users", userGuards(cfg, userRepo)...)

	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.updateProfile)
	g.PUT("/change-password", h.changePassword)
}

func (h *UserHandler) getProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) changePassword(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	rep, err := h.uc.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return writeError(c, err)
	}

	// 以後は新しいtoken_versionのトークンが必要
	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "password changed, please log in again"})
}
