package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// CheckoutLine is one purchased product inside a CheckoutEvent.
type CheckoutLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutEvent is emitted after a checkout commits.
type CheckoutEvent struct {
	TransactionID uint            `json:"transaction_id"`
	UserID        uint            `json:"user_id"`
	Total         decimal.Decimal `json:"total"`
	Lines         []CheckoutLine  `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewCheckoutEvent builds the event for a committed transaction.
func NewCheckoutEvent(txn *model.Transaction) CheckoutEvent {
	lines := make([]CheckoutLine, 0, len(txn.Orders))
	for _, o := range txn.Orders {
		lines = append(lines, CheckoutLine{ProductID: o.ProductID, Quantity: o.Quantity, Price: o.Price})
	}
	return CheckoutEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Total:         txn.Total(),
		Lines:         lines,
		CreatedAt:     txn.CreatedAt,
	}
}

// Publisher delivers checkout events to downstream consumers.
type Publisher interface {
	PublishCheckout(ctx context.Context, event CheckoutEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaWriter creates a writer for topic on brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher publishes through writer.
func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishCheckout(ctx context.Context, event CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-created-%d", event.TransactionID)),
		Value: payload,
		Time:  event.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write checkout event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckout(context.Context, CheckoutEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
