package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (usecase.EffectReport, error)
	Unsubscribe(ctx context.Context, email string) error
	Send(ctx context.Context, actorAdminUserID int64, in usecase.SendNewsletterInput) (usecase.BroadcastResult, error)
}

// /api/newsletter
type NewsletterHandler struct {
	uc NewsletterService
}

func NewNewsletterHandler(uc NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{uc: uc}
}

type sendNewsletterRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Template string `json:"template"`
}

func (h *NewsletterHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository, throttle Throttle) {
	g := api.Group("/newsletter")

	g.POST("/subscribe", h.subscribe, throttle("newsletter"))
	g.POST("/unsubscribe", h.unsubscribe, throttle("newsletter"))
	g.POST("/send-newsletter", h.send, adminGuards(cfg, userRepo)...)
}

func (h *NewsletterHandler) subscribe(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	rep, err := h.uc.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Subscribed successfully"})
}

func (h *NewsletterHandler) unsubscribe(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	if err := h.uc.Unsubscribe(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Unsubscribed successfully"})
}

func (h *NewsletterHandler) send(c echo.Context) error {
	var req sendNewsletterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Send(c.Request().Context(), adminID, usecase.SendNewsletterInput{
		Subject:  req.Subject,
		Message:  req.Message,
		Template: req.Template,
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, out.Report)
	return c.JSON(http.StatusOK, out)
}
