package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"uptech/internal/infra/payment"
)

type PaymentUsecase struct {
	gateway         CheckoutGateway
	defaultCurrency string
}

func NewPaymentUsecase(gateway CheckoutGateway, defaultCurrency string) *PaymentUsecase {
	return &PaymentUsecase{gateway: gateway, defaultCurrency: defaultCurrency}
}

// Stripe の checkout session URL を返す
func (u *PaymentUsecase) Checkout(ctx context.Context, items []payment.Item, currency string) (string, error) {
	if strings.TrimSpace(currency) == "" {
		currency = u.defaultCurrency
	}

	url, err := u.gateway.CreateCheckout(ctx, items, currency)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, payment.ErrInvalidItems):
		return "", NewHTTPError(http.StatusBadRequest, "invalid products")
	case errors.Is(err, payment.ErrDisabled):
		return "", NewHTTPError(http.StatusServiceUnavailable, "payment not available")
	default:
		return "", NewHTTPError(http.StatusBadGateway, "payment provider error")
	}
}
