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

type ContactService interface {
	Submit(ctx context.Context, in usecase.ContactInput) (model.ContactMessage, usecase.EffectReport, error)
	List(ctx context.Context) ([]model.ContactMessage, error)
	Get(ctx context.Context, id int64) (model.ContactMessage, error)
	Delete(ctx context.Context, id int64) error
}

// /api/contact と /api/admin/contact
type ContactHandler struct {
	uc ContactService
}

func NewContactHandler(uc ContactService) *ContactHandler {
	return &ContactHandler{uc: uc}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository, throttle Throttle) {
	api.POST("/contact", h.submit, throttle("contact"))

	admin := api.Group("/admin/contact", adminGuards(cfg, userRepo)...)
	admin.GET("", h.list)
	admin.GET("/:id", h.get)
	admin.DELETE("/:id", h.delete)
}

func (h *ContactHandler) submit(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	msg, rep, err := h.uc.Submit(c.Request().Context(), usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusCreated, msg)
}

func (h *ContactHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContactHandler) get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContactHandler) delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Message deleted"})
}
