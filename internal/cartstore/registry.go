package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/digitaldudes/ottcart/internal/storage"
	"golang.org/x/sync/singleflight"
)

const DefaultSlotPrefix = "cart-storage"

// Registry hands out one Store per client session. It is created once at
// startup and injected wherever a session cart is needed.
type Registry struct {
	slots       storage.SlotStore
	saver       Saver
	prefix      string
	saveTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.RWMutex
	stores map[string]*Store
	sfg    singleflight.Group // one slot load per session at a time
}

func NewRegistry(slots storage.SlotStore, prefix string, saveTimeout time.Duration, logger *slog.Logger) *Registry {
	if prefix == "" {
		prefix = DefaultSlotPrefix
	}
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		slots:       slots,
		saver:       NewSlotSaver(slots),
		prefix:      prefix,
		saveTimeout: saveTimeout,
		logger:      logger,
		now:         time.Now,
		stores:      make(map[string]*Store),
	}
}

func (r *Registry) SlotName(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Get returns the session's store, loading it from the slot store on first
// use. A missing or malformed record yields an empty cart; an unreachable slot
// store is an error so a stored cart is never overwritten with an empty one.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	if s := r.cached(sessionID); s != nil {
		s.touch(r.now())
		return s, nil
	}

	v, err, _ := r.sfg.Do(sessionID, func() (interface{}, error) {
		if s := r.cached(sessionID); s != nil {
			s.touch(r.now())
			return s, nil
		}

		cart, err := r.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		s := New(r.SlotName(sessionID), cart, r.saver, r.logger)
		s.saveTimeout = r.saveTimeout
		s.touch(r.now())

		r.mu.Lock()
		r.stores[sessionID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Clear empties the session's cart whether or not it is loaded.
func (r *Registry) Clear(ctx context.Context, sessionID string) error {
	if s := r.cached(sessionID); s != nil {
		s.Clear(ctx)
		return nil
	}
	if err := r.slots.Delete(ctx, r.SlotName(sessionID)); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

// Forget drops the in-memory copy of a session's cart. The next Get reloads
// it from the slot store.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.stores, sessionID)
	r.mu.Unlock()
}

// Evict flushes and drops every loaded cart that has not been handed out for
// idle. A cart whose flush fails stays loaded. It returns the number evicted.
func (r *Registry) Evict(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, s := range r.stores {
		if s.idleSince(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	evicted := 0
	for _, id := range stale {
		s := r.cached(id)
		if s == nil || !s.idleSince(cutoff) {
			continue
		}
		if err := s.Flush(ctx); err != nil {
			r.logger.WarnContext(ctx, "keeping idle cart after failed flush",
				slog.String("slot", s.Slot()),
				slog.Any("err", err),
			)
			continue
		}

		r.mu.Lock()
		if r.stores[id] == s && s.idleSince(cutoff) {
			delete(r.stores, id)
			evicted++
		}
		r.mu.Unlock()
	}
	return evicted
}

// RunEviction calls Evict every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(ctx, idle); n > 0 {
				r.logger.DebugContext(ctx, "evicted idle carts", slog.Int("count", n))
			}
		}
	}
}

// Flush writes every loaded cart and returns the joined errors.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.RLock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.RUnlock()

	var errs []error
	for _, s := range stores {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) cached(sessionID string) *Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stores[sessionID]
}

func (r *Registry) load(ctx context.Context, sessionID string) (domain.Cart, error) {
	slot := r.SlotName(sessionID)

	data, err := r.slots.Load(ctx, slot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load slot %s: %w", slot, err)
	}

	cart, err := Decode(data)
	if err != nil {
		r.logger.WarnContext(ctx, "discarding stored cart",
			slog.String("slot", slot),
			slog.Any("err", err),
		)
		return domain.Cart{}, nil
	}
	return cart, nil
}
