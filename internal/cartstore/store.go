package cartstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/digitaldudes/ottcart/internal/storage"
	"github.com/shopspring/decimal"
)

const defaultSaveTimeout = 2 * time.Second

// Saver persists a cart snapshot under a slot.
type Saver interface {
	Save(ctx context.Context, slot string, cart domain.Cart) error
}

// SlotSaver encodes carts and writes them to a durable slot store.
type SlotSaver struct {
	slots storage.SlotStore
}

func NewSlotSaver(slots storage.SlotStore) *SlotSaver {
	return &SlotSaver{slots: slots}
}

func (s *SlotSaver) Save(ctx context.Context, slot string, cart domain.Cart) error {
	data, err := Encode(cart)
	if err != nil {
		return err
	}
	if err := s.slots.Save(ctx, slot, data); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// Store owns one session's cart. Mutations go through Dispatch, which applies
// the pure reducer and then runs the save effect. Save failures are logged and
// never returned; the in-memory cart stays authoritative.
type Store struct {
	mu          sync.RWMutex
	slot        string
	cart        domain.Cart
	saver       Saver
	saveTimeout time.Duration
	logger      *slog.Logger

	lastUsed atomic.Int64 // unix nanos of the last registry hand-out
}

// New creates a store seeded with initial. A nil saver keeps the cart in
// memory only.
func New(slot string, initial domain.Cart, saver Saver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slot:        slot,
		cart:        initial,
		saver:       saver,
		saveTimeout: defaultSaveTimeout,
		logger:      logger,
	}
}

func (s *Store) Slot() string {
	return s.slot
}

// Dispatch applies action and returns the resulting cart. The save runs while
// the write lock is held so durable writes land in mutation order.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) domain.Cart {
	if action == nil {
		return s.Snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Reduce(s.cart, action)
	if err := s.save(ctx, s.cart); err != nil {
		s.logger.WarnContext(ctx, "cart save failed",
			slog.String("slot", s.slot),
			slog.String("action", action.Name()),
			slog.Any("err", err),
		)
	}
	return s.cart
}

func (s *Store) AddItem(ctx context.Context, item domain.LineItem) domain.Cart {
	return s.Dispatch(ctx, domain.AddItem{Item: item})
}

// AddItemUpTo adds one unit unless the line already holds max units.
func (s *Store) AddItemUpTo(ctx context.Context, item domain.LineItem, max int) domain.Cart {
	return s.Dispatch(ctx, domain.AddItem{Item: item, Max: max})
}

func (s *Store) RemoveItem(ctx context.Context, id string) domain.Cart {
	return s.Dispatch(ctx, domain.RemoveItem{ID: id})
}

func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) domain.Cart {
	return s.Dispatch(ctx, domain.SetQuantity{ID: id, Quantity: quantity})
}

func (s *Store) SetEmail(ctx context.Context, id, email string) domain.Cart {
	return s.Dispatch(ctx, domain.SetEmail{ID: id, Email: email})
}

func (s *Store) Clear(ctx context.Context) domain.Cart {
	return s.Dispatch(ctx, domain.ClearCart{})
}

// RemoveOrdered takes the lines of a placed order out of the cart. Checkout
// calls it once the order is accepted.
func (s *Store) RemoveOrdered(ctx context.Context, ordered domain.Cart) domain.Cart {
	return s.Dispatch(ctx, domain.RemoveOrdered{Ordered: ordered})
}

// Snapshot returns the current cart. Carts are immutable values, so the
// result is safe to keep after later mutations.
func (s *Store) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Store) Items() []domain.LineItem {
	snap := s.Snapshot()
	items := make([]domain.LineItem, len(snap.Items))
	copy(items, snap.Items)
	return items
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// Flush writes the current cart and reports the result, for hosts that need
// to know, e.g. on shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save(ctx, s.cart)
}

func (s *Store) touch(t time.Time) {
	s.lastUsed.Store(t.UnixNano())
}

func (s *Store) idleSince(cutoff time.Time) bool {
	return s.lastUsed.Load() < cutoff.UnixNano()
}

func (s *Store) save(ctx context.Context, cart domain.Cart) error {
	if s.saver == nil {
		return nil
	}
	// a cancelled request must not drop the write
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()
	return s.saver.Save(ctx, s.slot, cart)
}
