package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

// ReceiptEvent is the payload published per committed checkout. Downstream
// consumers key on the handle for per-account ordering.
type ReceiptEvent struct {
	Handle      string                     `json:"handle"`
	Items       map[string]domain.CartItem `json:"items"`
	Total       float64                    `json:"total"`
	Partial     bool                       `json:"partial"`
	CompletedAt time.Time                  `json:"completed_at"`
}

// Publisher emits receipt events to Kafka. Publication is best-effort; the
// checkout engine logs failures and never fails the request over them.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront-receipts",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) PublishReceipt(ctx context.Context, handle string, r *domain.Receipt) error {
	event := ReceiptEvent{
		Handle:      handle,
		Items:       r.Items,
		Total:       r.Total,
		Partial:     r.Message != "",
		CompletedAt: r.Timestamp,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(handle),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("checkout.completed")},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
