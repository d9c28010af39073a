package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/fsdevblog/groph-market/internal/domain"
)

// OrderEvent полезная нагрузка событий order_created / order_status_changed.
type OrderEvent struct {
	OrderID    int64                  `json:"order_id"`
	ProductID  int64                  `json:"product_id"`
	UserID     int64                  `json:"user_id"`
	Quantity   int64                  `json:"quantity"`
	TotalPrice string                 `json:"total_price"`
	Status     domain.OrderStatusType `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
}

// KafkaPublisher пишет события заказов в kafka-топик.
type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:     kafkaGo.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafkaGo.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order domain.Order) error {
	return p.publish(ctx, "order_created", order)
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order domain.Order) error {
	return p.publish(ctx, "order_status_changed", order)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, order domain.Order) error {
	payload, marshalErr := json.Marshal(OrderEvent{
		OrderID:    order.ID,
		ProductID:  order.ProductID,
		UserID:     order.UserID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice.String(),
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	})
	if marshalErr != nil {
		return marshalErr //nolint:wrapcheck
	}

	return p.writer.WriteMessages(ctx, kafkaGo.Message{ //nolint:wrapcheck
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close() //nolint:wrapcheck
}

// NoopPublisher используется когда брокеры не сконфигурированы.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(context.Context, domain.Order) error       { return nil }
func (NoopPublisher) OrderStatusChanged(context.Context, domain.Order) error { return nil }
