package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 二重送信防止キー
const HeaderIdempotencyKey = "X-Idempotency-Key"

type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, in usecase.PlaceOrderInput) (usecase.OrderOutput, usecase.EffectReport, error)
	ListMyOrders(ctx context.Context, userID int64, page, limit int) (usecase.OrderListOutput, error)
	GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (usecase.OrderOutput, error)
	GetMyOrderStatus(ctx context.Context, userID int64, orderID int64) (usecase.OrderStatusOutput, error)
	CancelMyOrder(ctx context.Context, userID int64, orderID int64) (usecase.OrderOutput, usecase.EffectReport, error)
}

// /api/user/orders
type OrderHandler struct {
	uc OrderService
}

func NewOrderHandler(uc OrderService) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type OrderCreateRequest struct {
	Items []OrderItemRequest `json:"items"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/user/orders", userGuards(cfg, userRepo)...)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/status", h.status)
	g.PUT("/:id/cancel", h.cancel)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	items := make([]usecase.PlaceOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	out, rep, err := h.uc.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:          items,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) status(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetMyOrderStatus(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, rep, err := h.uc.CancelMyOrder(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}

	writeEffects(c, rep)
	return c.JSON(http.StatusOK, out)
}
