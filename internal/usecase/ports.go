package usecase

import (
	"context"

	"uptech/internal/infra/event"
	"uptech/internal/infra/mail"
	"uptech/internal/infra/payment"
)

// 外部サービスの約束（実装は infra 配下、未設定時は no-op / ログ出力）

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type SMSSender interface {
	Send(ctx context.Context, to string, body string) error
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev event.OrderEvent) error
}

type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, items []payment.Item, currency string) (string, error)
}
