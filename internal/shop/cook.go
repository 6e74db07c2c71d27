// This file contains the cook worker: claim an order, prepare it, cook
// it in the oven, hand it to the counter.

package shop

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cook repeatedly claims one placed order and carries it through
// preparation and oven cooking.
type Cook struct {
	ID     int
	cooked atomic.Int64
	busy   atomic.Bool
}

// CookedCount returns how many orders this cook has finished.
func (c *Cook) CookedCount() int64 { return c.cooked.Load() }

// Available reports whether the cook is between orders.
func (c *Cook) Available() bool { return !c.busy.Load() }

func (c *Cook) run(ctx context.Context, s *Shop) {
	log.WithField("cook_id", c.ID).Debug("cook worker up")
	defer log.WithField("cook_id", c.ID).Debug("cook worker down")

	tick := time.NewTicker(s.cfg.CookIdle)
	defer tick.Stop()

	for {
		id, ok := s.store.ClaimPlaced(c.ID)
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-s.placedWake:
			case <-tick.C:
			}
			continue
		}
		c.busy.Store(true)
		err := c.process(ctx, s, id)
		c.busy.Store(false)
		if err != nil {
			return
		}
	}
}

// process carries one claimed order through preparation and cooking.
// A non-nil error means the context was cancelled; a false Advance means
// the order was discarded underneath us and is simply abandoned.
func (c *Cook) process(ctx context.Context, s *Shop, orderID int) error {
	prepTime := s.estimator.Estimate()
	log.WithFields(log.Fields{"cook_id": c.ID, "order_id": orderID, "prep_time": prepTime}).
		Debug("cook is preparing order")

	if err := sleepCtx(ctx, prepTime); err != nil {
		return err
	}
	if !s.store.Advance(orderID, StatusPrepared) {
		return nil
	}

	if err := s.oven.Acquire(ctx); err != nil {
		return err
	}
	log.WithFields(log.Fields{"cook_id": c.ID, "order_id": orderID}).
		Debug("cook is using the oven")
	err := sleepCtx(ctx, prepTime/2)
	s.oven.Release()
	if err != nil {
		return err
	}

	if !s.store.Advance(orderID, StatusCooked) {
		return nil
	}
	c.cooked.Add(1)
	wake(s.cookedWake)
	return nil
}
