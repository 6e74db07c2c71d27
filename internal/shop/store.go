// This file contains the Store, the single source of truth for order state.

package shop

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrStoreFull is returned by Insert when the fixed order capacity is reached.
var ErrStoreFull = errors.New("order store is full")

// Store is a bounded collection of orders guarded by one coarse lock.
// Every read or write of an order's Status, CookID or CourierID goes
// through this lock; claim operations scan and flip status in a single
// critical section so an order is never claimed twice.
type Store struct {
	mu       sync.Mutex
	orders   []Order
	capacity int
}

// NewStore returns an empty store that holds at most capacity orders.
func NewStore(capacity int) *Store {
	return &Store{
		orders:   make([]Order, 0, capacity),
		capacity: capacity,
	}
}

// Insert appends a new Placed order and returns its ID, which is the
// insertion index.
func (s *Store) Insert(customerID, x, y int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.orders) >= s.capacity {
		return 0, ErrStoreFull
	}
	o := Order{
		ID:         len(s.orders),
		CustomerID: customerID,
		X:          x,
		Y:          y,
		Status:     StatusPlaced,
		CookID:     -1,
		CourierID:  -1,
	}
	s.orders = append(s.orders, o)
	logTransition(o, "order placed")
	return o.ID, nil
}

// ClaimPlaced finds the first Placed order, marks it Claimed and assigns
// the cook, all under the lock. It returns false when nothing is placed.
func (s *Store) ClaimPlaced(cookID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].Status != StatusPlaced {
			continue
		}
		s.orders[i].Status = StatusClaimed
		s.orders[i].CookID = cookID
		logTransition(s.orders[i], "order claimed by cook")
		return s.orders[i].ID, true
	}
	return 0, false
}

// ClaimCookedBatch greedily claims up to max Cooked orders for one
// delivery worker, marking them InDelivery in a single scan.
func (s *Store) ClaimCookedBatch(courierID, max int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []int
	for i := range s.orders {
		if len(batch) >= max {
			break
		}
		if s.orders[i].Status != StatusCooked {
			continue
		}
		s.orders[i].Status = StatusInDelivery
		s.orders[i].CourierID = courierID
		logTransition(s.orders[i], "order picked up for delivery")
		batch = append(batch, s.orders[i].ID)
	}
	return batch
}

// Advance moves an order one step along its lifecycle. It returns false
// when the transition is not allowed, which a worker racing the shutdown
// sweep treats as "order gone" rather than an error.
func (s *Store) Advance(orderID int, next Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if orderID < 0 || orderID >= len(s.orders) {
		return false
	}
	o := &s.orders[orderID]
	if !o.Status.canAdvance(next) {
		return false
	}
	o.Status = next
	logTransition(*o, "order advanced")
	return true
}

// MarkDiscarded flips every non-terminal order of one customer to
// Discarded and returns how many were flipped.
func (s *Store) MarkDiscarded(customerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.orders {
		if s.orders[i].CustomerID != customerID || s.orders[i].Status.Terminal() {
			continue
		}
		s.orders[i].Status = StatusDiscarded
		logTransition(s.orders[i], "order cancelled")
		n++
	}
	return n
}

// DiscardAll is the shutdown sweep: every non-terminal order becomes
// Discarded.
func (s *Store) DiscardAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.orders {
		if s.orders[i].Status.Terminal() {
			continue
		}
		s.orders[i].Status = StatusDiscarded
		logTransition(s.orders[i], "order discarded on shutdown")
		n++
	}
	return n
}

// AllSettled reports whether every order of the customer is terminal,
// and whether all of them ended Delivered. A customer with no orders is
// settled. Calling it again after completion returns the same answer.
func (s *Store) AllSettled(customerID int) (settled, allDelivered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allDelivered = true
	for i := range s.orders {
		if s.orders[i].CustomerID != customerID {
			continue
		}
		if !s.orders[i].Status.Terminal() {
			return false, false
		}
		if s.orders[i].Status != StatusDelivered {
			allDelivered = false
		}
	}
	return true, allDelivered
}

// Get returns a snapshot copy of one order.
func (s *Store) Get(orderID int) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if orderID < 0 || orderID >= len(s.orders) {
		return Order{}, false
	}
	return s.orders[orderID], true
}

// Len returns the number of orders ever inserted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func logTransition(o Order, msg string) {
	log.WithFields(log.Fields{
		"order_id":    o.ID,
		"customer_id": o.CustomerID,
		"status":      o.Status.String(),
		"cook_id":     o.CookID,
		"courier_id":  o.CourierID,
	}).Info(msg)
}
