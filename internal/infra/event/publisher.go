package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"uptech/internal/config"

	"github.com/segmentio/kafka-go"
)

type OrderEventType string

const (
	OrderCreated       OrderEventType = "order.created"
	OrderStatusChanged OrderEventType = "order.status_changed"
	OrderDeleted       OrderEventType = "order.deleted"
)

// 注文のライフサイクルイベント（キーは注文ID）
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    int64          `json:"order_id"`
	UserID     int64          `json:"user_id"`
	Axis       string         `json:"axis,omitempty"`
	Status     string         `json:"status,omitempty"`
	Total      string         `json:"total,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaOrderTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", ev.Type, ev.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher はブローカー未設定時
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
