package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic   = "checkout-outbox"
	DefaultGroupID = "cart-service-consumer"
)

var errMissingSession = errors.New("missing or invalid session_id")

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CartClearer empties a session's cart, loaded or not.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// Poller consumes order-completion events and clears the matching carts.
type Poller struct {
	carts      CartClearer
	reader     MessageReader
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewPoller(carts CartClearer, logger *slog.Logger, topic, groupID string, brokers ...string) *Poller {
	if topic == "" {
		topic = DefaultTopic
	}
	if groupID == "" {
		groupID = DefaultGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newPoller(carts, reader, logger)
}

func newPoller(carts CartClearer, reader MessageReader, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		carts:      carts,
		reader:     reader,
		logger:     logger.With(slog.String("component", "poller")),
		retryDelay: time.Second,
	}
}

// Run reads until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.ErrorContext(ctx, "error reading message", slog.Any("err", err))
			p.wait(ctx)
			continue
		}

		if err := p.handle(ctx, m); err != nil {
			p.logger.WarnContext(ctx, "skipping message",
				slog.Int64("offset", m.Offset),
				slog.Any("err", err),
			)
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Error("error closing reader", slog.Any("err", err))
	}
}

func (p *Poller) handle(ctx context.Context, m kafka.Message) error {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		return fmt.Errorf("error parsing message: %w", err)
	}
	if payload.SessionID == "" {
		return errMissingSession
	}

	if err := p.carts.Clear(ctx, payload.SessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	p.logger.InfoContext(ctx, "cart cleared after checkout", slog.String("session_id", payload.SessionID))
	return nil
}

func (p *Poller) wait(ctx context.Context) {
	t := time.NewTimer(p.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
