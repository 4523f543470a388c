package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uptech/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrDisabled     = errors.New("payment: stripe not configured")
	ErrInvalidItems = errors.New("payment: invalid items")
)

// チェックアウト1行分
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Stripeの line_items に変換（金額は最小通貨単位）
func BuildLineItems(items []Item, currency string) ([]*stripe.CheckoutSessionLineItemParams, error) {
	if len(items) == 0 {
		return nil, ErrInvalidItems
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency required", ErrInvalidItems)
	}

	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" || it.Quantity < 1 || !it.Price.IsPositive() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidItems, it.Name)
		}
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	return out, nil
}

type sessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type StripeGateway struct {
	create     sessionCreator
	successURL string
	cancelURL  string
}

func NewStripeGateway(cfg config.PaymentConfig, apiDomain string) *StripeGateway {
	sc := &client.API{}
	sc.Init(cfg.StripeSecretKey, nil)

	base := strings.TrimRight(apiDomain, "/")
	return &StripeGateway{
		create:     sc.CheckoutSessions.New,
		successURL: base + "/api/payments/success",
		cancelURL:  base + "/api/payments/cancel",
	}
}

// セッションを作ってリダイレクト先URLを返す
func (g *StripeGateway) CreateCheckout(ctx context.Context, items []Item, currency string) (string, error) {
	lineItems, err := BuildLineItems(items, currency)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx

	s, err := g.create(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return s.URL, nil
}

// DisabledGateway はキー未設定時
type DisabledGateway struct{}

func (DisabledGateway) CreateCheckout(_ context.Context, items []Item, currency string) (string, error) {
	if _, err := BuildLineItems(items, currency); err != nil {
		return "", err
	}
	return "", ErrDisabled
}
