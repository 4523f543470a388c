package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID int64, notificationID int64) (model.Notification, error)
	Delete(ctx context.Context, userID int64, notificationID int64) error
	SendPromotion(ctx context.Context, actorAdminUserID int64, in usecase.SendPromotionInput) (usecase.BroadcastResult, error)
}

// /api/notifications と /api/promotions
type NotificationHandler struct {
	uc NotificationService
}

func NewNotificationHandler(uc NotificationService) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

type promotionRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h *NotificationHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/notifications", userGuards(cfg, userRepo)...)
	g.GET("", h.list)
	g.PUT("/:id/read", h.markRead)
	g.DELETE("/:id", h.delete)

	admin := api.Group("/promotions", adminGuards(cfg, userRepo)...)
	admin.POST("/send", h.sendPromotion)
}

func (h *NotificationHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.MarkRead(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Notification deleted"})
}

func (h *NotificationHandler) sendPromotion(c echo.Context) error {
	var req promotionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.SendPromotion(c.Request().Context(), adminID, usecase.SendPromotionInput{
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, out.Report)
	return c.JSON(http.StatusOK, out)
}
