package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderService interface {
	List(ctx context.Context, f repository.AdminOrderListFilter) (usecase.OrderListOutput, error)
	Get(ctx context.Context, orderID int64) (usecase.OrderOutput, error)
	UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in usecase.AdminUpdateOrderStatusInput) (usecase.OrderOutput, usecase.EffectReport, error)
	Delete(ctx context.Context, actorAdminUserID int64, orderID int64) (usecase.EffectReport, error)
}

type AdminOrderHandler struct {
	uc AdminOrderService
}

func NewAdminOrderHandler(uc AdminOrderService) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// 片方だけの指定も可
type OrderStatusUpdateRequest struct {
	PaymentStatus  string `json:"paymentStatus"`
	DeliveryStatus string `json:"deliveryStatus"`
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	admin := api.Group("/admin/orders", adminGuards(cfg, userRepo)...)

	admin.GET("", h.list)
	admin.GET("/:id", h.get)
	admin.PUT("/:id/status", h.updateStatus)
	admin.DELETE("/:id", h.delete)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	userID, ok := queryInt64Ptr(c, "userId")
	if !ok {
		return badRequest(c, "invalid userId")
	}

	orderID, ok := queryInt64Ptr(c, "orderId")
	if !ok {
		return badRequest(c, "invalid orderId")
	}

	f := repository.AdminOrderListFilter{
		Page:           page,
		Limit:          limit,
		OrderID:        orderID,
		UserID:         userID,
		PaymentStatus:  c.QueryParam("paymentStatus"),
		DeliveryStatus: c.QueryParam("deliveryStatus"),
	}

	if v := c.QueryParam("from"); v != "" {
		tm, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return badRequest(c, "invalid from")
		}
		f.From = tm
	}

	if v := c.QueryParam("to"); v != "" {
		tm, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return badRequest(c, "invalid to")
		}
		f.To = tm
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) get(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.Get(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	// 操作した管理者ID（監査ログ用）
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, rep, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{
		PaymentStatus:  req.PaymentStatus,
		DeliveryStatus: req.DeliveryStatus,
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	rep, err := h.uc.Delete(c.Request().Context(), adminID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Order deleted successfully"})
}
