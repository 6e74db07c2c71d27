// This file contains the Order type and its lifecycle status machine.

package shop

import "fmt"

// Status is the lifecycle state of an order.
type Status int

const (
	StatusPlaced Status = iota
	StatusClaimed
	StatusPrepared
	StatusCooked
	StatusInDelivery
	StatusDelivered
	StatusDiscarded
)

func (s Status) String() string {
	switch s {
	case StatusPlaced:
		return "placed"
	case StatusClaimed:
		return "claimed"
	case StatusPrepared:
		return "prepared"
	case StatusCooked:
		return "cooked"
	case StatusInDelivery:
		return "in_delivery"
	case StatusDelivered:
		return "delivered"
	case StatusDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusDiscarded
}

// canAdvance reports whether an order may move from s to next.
// The forward path is strictly one step at a time; Discarded is
// reachable from any non-terminal state.
func (s Status) canAdvance(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusDiscarded {
		return true
	}
	return next == s+1
}

// Order is one customer-requested item with a delivery destination.
// The Store owns every Order; workers refer to them by ID only.
type Order struct {
	ID         int
	CustomerID int
	X, Y       int
	Status     Status
	CookID     int // -1 until a cook claims the order
	CourierID  int // -1 until a delivery worker picks it up
}

func (o Order) String() string {
	return fmt.Sprintf("order %d customer %d dest (%d,%d) status %v", o.ID, o.CustomerID, o.X, o.Y, o.Status)
}
