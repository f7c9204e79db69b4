// Package events publishes settlement events so other systems (notifications,
// ledgers) can react to a sale being paid or failing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"tradefy/internal/config"
	"tradefy/internal/money"
)

const (
	TypeTransactionPaid   = "transaction.paid"
	TypeTransactionFailed = "transaction.failed"

	DefaultBatchTimeout   = 50 * time.Millisecond
	DefaultPublishTimeout = 2 * time.Second
)

type Event struct {
	Type              string       `json:"type"`
	TransactionID     uint         `json:"transaction_id"`
	Reference         string       `json:"reference"`
	ExternalPaymentID string       `json:"external_payment_id"`
	SellerID          uint         `json:"seller_id"`
	ProductID         uint         `json:"product_id"`
	Amount            money.Amount `json:"amount"`
	Commission        money.Amount `json:"commission"`
	VendorAmount      money.Amount `json:"vendor_amount"`
	Currency          string       `json:"currency"`
	OccurredAt        time.Time    `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// New returns a Kafka publisher, or a no-op one when no brokers are configured.
func New(cfg config.Kafka) Publisher {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return NewKafkaPublisher(NewWriter(brokers, cfg.Topic, timeout), timeout)
}

// NewWriter builds a writer whose dial, write and retry budget all fit in
// timeout, so an unreachable broker fails fast instead of retrying for the
// kafka-go defaults.
func NewWriter(brokers []string, topic string, timeout time.Duration) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.ReferenceHash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           DefaultBatchTimeout,
		MaxAttempts:            2,
		WriteTimeout:           timeout,
		ReadTimeout:            timeout,
		Async:                  false,
		AllowAutoTopicCreation: false,
		Transport: &kafka.Transport{
			DialTimeout: timeout,
		},
	}
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher bounds every Publish call by timeout; zero means the
// caller's context alone decides.
func NewKafkaPublisher(w MessageWriter, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: timeout}
}

// Publish writes the event keyed by external payment id so all events of a
// payment land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ExternalPaymentID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
