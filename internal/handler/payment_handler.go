package handler

import (
	"context"
	"net/http"

	"uptech/internal/infra/payment"

	"github.com/labstack/echo/v4"
)

type PaymentService interface {
	Checkout(ctx context.Context, items []payment.Item, currency string) (string, error)
}

// /api/payments
type PaymentHandler struct {
	uc    PaymentService
	feURL string
}

func NewPaymentHandler(uc PaymentService, feURL string) *PaymentHandler {
	return &PaymentHandler{uc: uc, feURL: feURL}
}

type checkoutRequest struct {
	Products []payment.Item `json:"products"`
	Currency string         `json:"currency"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *PaymentHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/payments")

	g.POST("/checkout", h.checkout)
	g.GET("/success", h.success)
	g.GET("/cancel", h.cancel)
}

func (h *PaymentHandler) checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	url, err := h.uc.Checkout(c.Request().Context(), req.Products, req.Currency)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, checkoutResponse{URL: url})
}

func (h *PaymentHandler) success(c echo.Context) error {
	return c.String(http.StatusOK, "Your payment was successfully fulfilled!")
}

// フロントのトップへ戻す
func (h *PaymentHandler) cancel(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, h.feURL)
}
