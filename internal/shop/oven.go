// This file contains the Oven, the bounded-resource gate shared by all cooks.

package shop

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Oven gates concurrent oven use with two independent counters: openings
// limits how many cooks may interact with the oven at once, capacity
// limits how many trays are inside. A cook holds one permit of each for
// the whole cooking interval.
//
// Acquire order is openings then capacity; Release is the reverse. Do
// not collapse the two into one semaphore: the admitted concurrency of
// "few cooks at the door, more trays inside" depends on them being
// separate.
type Oven struct {
	openings *semaphore.Weighted
	capacity *semaphore.Weighted
}

// NewOven returns an oven with the given number of door openings and
// tray slots.
func NewOven(openings, capacity int64) *Oven {
	return &Oven{
		openings: semaphore.NewWeighted(openings),
		capacity: semaphore.NewWeighted(capacity),
	}
}

// Acquire blocks until one opening and one tray slot are held, or the
// context is cancelled. On cancellation nothing stays held.
func (ov *Oven) Acquire(ctx context.Context) error {
	if err := ov.openings.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := ov.capacity.Acquire(ctx, 1); err != nil {
		ov.openings.Release(1)
		return err
	}
	return nil
}

// Release returns both permits, tray slot first.
func (ov *Oven) Release() {
	ov.capacity.Release(1)
	ov.openings.Release(1)
}

// TryAcquire grabs both permits without blocking. Used by tests to probe
// for leaked permits.
func (ov *Oven) TryAcquire() bool {
	if !ov.openings.TryAcquire(1) {
		return false
	}
	if !ov.capacity.TryAcquire(1) {
		ov.openings.Release(1)
		return false
	}
	return true
}
