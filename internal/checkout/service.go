package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/digitaldudes/ottcart/internal/cartstore"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Submitter hands a placed order to the order pipeline.
type Submitter interface {
	Submit(ctx context.Context, order Order) error
}

type Carts interface {
	Get(ctx context.Context, sessionID string) (*cartstore.Store, error)
}

const (
	idempotencyTTL      = 24 * time.Hour
	idempotencyCapacity = 10000
)

type Service struct {
	carts     Carts
	submitter Submitter
	logger    *slog.Logger
	now       func() time.Time

	sfg    singleflight.Group            // one checkout per session and key at a time
	placed *expirable.LRU[string, Order] // by session and idempotency key
}

func NewService(carts Carts, submitter Submitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		carts:     carts,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
		placed:    expirable.NewLRU[string, Order](idempotencyCapacity, nil, idempotencyTTL),
	}
}

// Checkout turns the session cart into a pending order. Only the ordered lines
// leave the cart, and only after the order was submitted; on any error the
// cart is left as it was. Repeating a request with the same idempotency key
// from the same session returns the first order, also while it is in flight.
func (s *Service) Checkout(ctx context.Context, sessionID string, req Request) (Order, error) {
	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	if req.IdempotencyKey == "" {
		return s.place(ctx, sessionID, req)
	}

	key := sessionID + "\x00" + req.IdempotencyKey
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		if order, ok := s.placed.Get(key); ok {
			s.logger.InfoContext(ctx, "duplicate checkout request",
				slog.String("idempotency_key", req.IdempotencyKey),
				slog.String("order_id", order.ID),
			)
			return order, nil
		}

		order, err := s.place(ctx, sessionID, req)
		if err != nil {
			return nil, err
		}
		s.placed.Add(key, order)
		return order, nil
	})
	if err != nil {
		return Order{}, err
	}
	return v.(Order), nil
}

func (s *Service) place(ctx context.Context, sessionID string, req Request) (Order, error) {
	store, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Order{}, fmt.Errorf("load cart: %w", err)
	}

	cart := store.Snapshot()
	if cart.Len() == 0 {
		return Order{}, ErrEmptyCart
	}

	order := Order{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Items:         make([]OrderItem, 0, cart.Len()),
		Total:         cart.Total(),
		PaymentMethod: req.PaymentMethod,
		ReceiptRef:    req.ReceiptRef,
		CustomerNotes: req.CustomerNotes,
		Status:        StatusPending,
		CreatedAt:     s.now().UTC(),
	}
	for _, item := range cart.Items {
		if item.RequiresEmail() && item.CustomerEmail == "" {
			return Order{}, fmt.Errorf("%w: %s", ErrCustomerEmailRequired, item.Name)
		}
		order.Items = append(order.Items, orderItem(item))
	}

	if err := s.submitter.Submit(ctx, order); err != nil {
		return Order{}, fmt.Errorf("submit order: %w", err)
	}

	store.RemoveOrdered(ctx, cart)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("session_id", sessionID),
		slog.String("total", order.Total.String()),
		slog.Int("lines", len(order.Items)),
	)
	return order, nil
}
