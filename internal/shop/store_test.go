package shop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkTo pushes an order through the forward path up to target.
func walkTo(t *testing.T, s *Store, orderID int, target Status) {
	t.Helper()
	for next := StatusClaimed; next <= target; next++ {
		require.True(t, s.Advance(orderID, next), "advance to %v", next)
	}
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	s := NewStore(10)

	for want := 0; want < 3; want++ {
		id, err := s.Insert(7, want, want)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	o, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, 7, o.CustomerID)
	assert.Equal(t, -1, o.CookID)
}

func TestInsertFailsWhenFull(t *testing.T) {
	s := NewStore(1)

	_, err := s.Insert(0, 1, 1)
	require.NoError(t, err)

	_, err = s.Insert(0, 2, 2)
	require.ErrorIs(t, err, ErrStoreFull)

	// The first order is unaffected by the rejected insert.
	o, ok := s.Get(0)
	require.True(t, ok)
	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, 1, s.Len())
}

func TestClaimPlacedIsExclusive(t *testing.T) {
	const orders = 5
	s := NewStore(orders)
	for i := 0; i < orders; i++ {
		_, err := s.Insert(0, i, i)
		require.NoError(t, err)
	}

	var mu sync.Mutex
	claimed := map[int]int{} // orderID -> claim count

	var wg sync.WaitGroup
	for cook := 0; cook < 10; cook++ {
		wg.Add(1)
		go func(cook int) {
			defer wg.Done()
			for {
				id, ok := s.ClaimPlaced(cook)
				if !ok {
					return
				}
				mu.Lock()
				claimed[id]++
				mu.Unlock()
			}
		}(cook)
	}
	wg.Wait()

	assert.Len(t, claimed, orders)
	for id, n := range claimed {
		assert.Equal(t, 1, n, "order %d claimed more than once", id)
	}
}

func TestAdvanceIsMonotonic(t *testing.T) {
	s := NewStore(2)
	id, err := s.Insert(0, 3, 4)
	require.NoError(t, err)

	// No skipping stages.
	assert.False(t, s.Advance(id, StatusCooked))
	assert.False(t, s.Advance(id, StatusDelivered))

	walkTo(t, s, id, StatusDelivered)

	// Terminal states are final.
	assert.False(t, s.Advance(id, StatusDiscarded))
	assert.False(t, s.Advance(id, StatusDelivered))

	// Discarded is reachable from any non-terminal state.
	id2, err := s.Insert(0, 1, 1)
	require.NoError(t, err)
	walkTo(t, s, id2, StatusPrepared)
	assert.True(t, s.Advance(id2, StatusDiscarded))
	assert.False(t, s.Advance(id2, StatusCooked))
}

func TestClaimCookedBatchHonorsLimit(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 5; i++ {
		id, err := s.Insert(0, i, i)
		require.NoError(t, err)
		walkTo(t, s, id, StatusCooked)
	}

	first := s.ClaimCookedBatch(1, 3)
	assert.Len(t, first, 3)
	second := s.ClaimCookedBatch(2, 3)
	assert.Len(t, second, 2)
	assert.Empty(t, s.ClaimCookedBatch(3, 3))

	for _, id := range first {
		o, _ := s.Get(id)
		assert.Equal(t, StatusInDelivery, o.Status)
		assert.Equal(t, 1, o.CourierID)
	}
}

func TestMarkDiscardedTouchesOneCustomer(t *testing.T) {
	s := NewStore(10)
	mine, _ := s.Insert(1, 1, 1)
	other, _ := s.Insert(2, 2, 2)
	done, _ := s.Insert(1, 3, 3)
	walkTo(t, s, done, StatusDelivered)

	assert.Equal(t, 1, s.MarkDiscarded(1))

	o, _ := s.Get(mine)
	assert.Equal(t, StatusDiscarded, o.Status)
	o, _ = s.Get(other)
	assert.Equal(t, StatusPlaced, o.Status)
	o, _ = s.Get(done)
	assert.Equal(t, StatusDelivered, o.Status, "terminal orders are left alone")
}

func TestDiscardAllSweepsOpenOrders(t *testing.T) {
	s := NewStore(10)
	a, _ := s.Insert(1, 1, 1)
	b, _ := s.Insert(2, 2, 2)
	walkTo(t, s, b, StatusDelivered)

	assert.Equal(t, 1, s.DiscardAll())
	o, _ := s.Get(a)
	assert.Equal(t, StatusDiscarded, o.Status)
}

func TestAllSettledIsIdempotent(t *testing.T) {
	s := NewStore(10)
	id, _ := s.Insert(5, 3, 4)

	settled, _ := s.AllSettled(5)
	assert.False(t, settled)

	walkTo(t, s, id, StatusDelivered)
	for i := 0; i < 3; i++ {
		settled, allDelivered := s.AllSettled(5)
		assert.True(t, settled)
		assert.True(t, allDelivered)
	}

	// A discarded order settles the customer without a full delivery.
	id2, _ := s.Insert(6, 1, 1)
	require.True(t, s.Advance(id2, StatusDiscarded))
	settled, allDelivered := s.AllSettled(6)
	assert.True(t, settled)
	assert.False(t, allDelivered)

	// No orders at all counts as settled.
	settled, allDelivered = s.AllSettled(99)
	assert.True(t, settled)
	assert.True(t, allDelivered)
}
