package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/digitaldudes/ottcart/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultOrdersTopic = "orders-placed"
	eventOrderPlaced   = "order_placed"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSubmitter publishes placed orders keyed by order id, so every event
// for one order lands on the same partition.
type KafkaSubmitter struct {
	writer  MessageWriter
	breaker *circuitbreaker.Breaker[struct{}]
}

func NewKafkaSubmitter(topic string, logger *slog.Logger, brokers ...string) *KafkaSubmitter {
	if topic == "" {
		topic = DefaultOrdersTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaSubmitter(w, circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig("kafka-orders"), logger))
}

func newKafkaSubmitter(w MessageWriter, breaker *circuitbreaker.Breaker[struct{}]) *KafkaSubmitter {
	return &KafkaSubmitter{writer: w, breaker: breaker}
}

func (k *KafkaSubmitter) Submit(ctx context.Context, order Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventOrderPlaced)},
		},
	}

	_, err = k.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, k.writer.WriteMessages(ctx, msg)
	})
	return err
}

func (k *KafkaSubmitter) Close() error {
	return k.writer.Close()
}

// LogSubmitter accepts every order and only logs it. Used when no brokers are
// configured.
type LogSubmitter struct {
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubmitter{logger: logger}
}

func (l *LogSubmitter) Submit(ctx context.Context, order Order) error {
	l.logger.InfoContext(ctx, "order submitted",
		slog.String("order_id", order.ID),
		slog.String("payment_method", string(order.PaymentMethod)),
		slog.String("total", order.Total.String()),
		slog.Int("lines", len(order.Items)),
	)
	return nil
}
