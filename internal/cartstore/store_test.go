package cartstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	m     sync.Mutex
	saved []domain.Cart
	slots []string
	err   error
}

func (m *mockSaver) Save(_ context.Context, slot string, cart domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saved = append(m.saved, cart)
	m.slots = append(m.slots, slot)
	return m.err
}

func (m *mockSaver) last() domain.Cart {
	m.m.Lock()
	defer m.m.Unlock()
	return m.saved[len(m.saved)-1]
}

func (m *mockSaver) count() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.saved)
}

func lineItem(id string, price int64) domain.LineItem {
	return domain.LineItem{
		ID:        id,
		ProductID: "prod-" + id,
		Name:      "Prime Video " + id,
		OttType:   "Prime Video",
		Price:     decimal.NewFromInt(price),
		SelectedProfile: &domain.Profile{
			ProfileID:   "profile-" + id,
			Name:        "Single screen",
			ScreenCount: 1,
			Quality:     "HD",
		},
		SelectedPricing: &domain.Pricing{
			Duration: domain.Duration{Value: 1, Unit: "month"},
			Price:    decimal.NewFromInt(price),
		},
	}
}

func requireTotals(t *testing.T, s *Store, total int64, count int) {
	t.Helper()
	require.True(t, s.Total().Equal(decimal.NewFromInt(total)), "total: want %d, got %s", total, s.Total())
	require.Equal(t, count, s.ItemCount())
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{}
	sut := New("cart-storage:s1", domain.Cart{}, saver, nil)

	sut.AddItem(ctx, lineItem("A", 100))
	requireTotals(t, sut, 100, 1)

	sut.AddItem(ctx, lineItem("A", 100))
	requireTotals(t, sut, 200, 2)

	sut.AddItem(ctx, lineItem("B", 50))
	requireTotals(t, sut, 250, 3)

	sut.SetQuantity(ctx, "A", 5)
	requireTotals(t, sut, 550, 6)

	sut.RemoveItem(ctx, "B")
	requireTotals(t, sut, 500, 5)

	sut.Clear(ctx)
	requireTotals(t, sut, 0, 0)
	assert.Empty(t, sut.Items())

	// every mutation triggered one save of the resulting state
	assert.Equal(t, 6, saver.count())
	assert.Equal(t, 0, saver.last().Len())
	for _, slot := range saver.slots {
		assert.Equal(t, "cart-storage:s1", slot)
	}
}

func TestStore_SetEmail(t *testing.T) {
	ctx := context.Background()
	sut := New("slot", domain.Cart{}, nil, nil)

	sut.AddItem(ctx, lineItem("A", 100))
	cart := sut.SetEmail(ctx, "A", "buyer@example.com")

	item, ok := cart.Find("A")
	require.True(t, ok)
	assert.Equal(t, "buyer@example.com", item.CustomerEmail)

	unchanged := sut.SetEmail(ctx, "missing", "x@example.com")
	assert.Equal(t, cart, unchanged)
}

func TestStore_SetQuantityZeroMatchesRemove(t *testing.T) {
	ctx := context.Background()
	a := New("a", domain.Cart{}, nil, nil)
	b := New("b", domain.Cart{}, nil, nil)
	for _, s := range []*Store{a, b} {
		s.AddItem(ctx, lineItem("A", 100))
		s.AddItem(ctx, lineItem("B", 50))
	}

	assert.Equal(t, a.SetQuantity(ctx, "B", 0), b.RemoveItem(ctx, "B"))
}

func TestStore_SaveFailureIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{err: errors.New("quota exceeded")}
	sut := New("slot", domain.Cart{}, saver, nil)

	cart := sut.AddItem(ctx, lineItem("A", 100))

	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, 1, sut.ItemCount())
	assert.Equal(t, 1, saver.count())
}

func TestStore_SaveSurvivesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slots := newRecordingSlots()
	sut := New("slot", domain.Cart{}, NewSlotSaver(slots), nil)
	sut.AddItem(ctx, lineItem("A", 100))

	data, err := slots.Load(context.Background(), "slot")
	require.NoError(t, err)
	restored, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.ItemCount())
}

func TestStore_Flush(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{}
	sut := New("slot", domain.Cart{}.Add(lineItem("A", 10)), saver, nil)

	require.NoError(t, sut.Flush(ctx))
	assert.Equal(t, 1, saver.last().ItemCount())

	saver.err = errors.New("down")
	assert.ErrorContains(t, sut.Flush(ctx), "down")
}

func TestStore_NilActionIsNoop(t *testing.T) {
	saver := &mockSaver{}
	sut := New("slot", domain.Cart{}.Add(lineItem("A", 10)), saver, nil)

	cart := sut.Dispatch(context.Background(), nil)
	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, 0, saver.count())
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	sut := New("slot", domain.Cart{}, nil, nil)
	sut.AddItem(ctx, lineItem("A", 10))

	items := sut.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, sut.ItemCount())
}

func TestStore_ConcurrentAddItem(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{}
	sut := New("slot", domain.Cart{}, saver, nil)

	const N = 100
	var wg sync.WaitGroup
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sut.AddItem(ctx, lineItem("A", 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, N, sut.ItemCount())
	assert.Equal(t, N, saver.count())
	// saves are ordered, so the last one carries the final quantity
	assert.Equal(t, N, saver.last().ItemCount())
}

func TestStore_AddItemUpToAndRemoveOrdered(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{}
	s := New("cart-storage:s1", domain.Cart{}, saver, nil)

	for i := 0; i < 5; i++ {
		s.AddItemUpTo(ctx, lineItem("A", 100), 3)
	}
	assert.Equal(t, 3, s.ItemCount())

	ordered := s.Snapshot()
	s.AddItem(ctx, lineItem("B", 50))

	cart := s.RemoveOrdered(ctx, ordered)
	require.Equal(t, 1, cart.Len())
	assert.Equal(t, "B", cart.Items[0].ID)
	assert.Equal(t, cart, saver.last())
}
