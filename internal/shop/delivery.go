// This file contains the delivery worker: batch cooked orders off the
// counter, travel, and hand them over.

package shop

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// Courier repeatedly collects up to BatchSize cooked orders and delivers
// the whole batch. The batch holds order IDs only; the store keeps
// owning the records.
type Courier struct {
	ID        int
	delivered atomic.Int64
	busy      atomic.Bool

	mu       sync.Mutex
	distance float64
}

// Delivered returns how many orders this courier has delivered.
func (d *Courier) Delivered() int64 { return d.delivered.Load() }

// Available reports whether the courier is between batches.
func (d *Courier) Available() bool { return !d.busy.Load() }

// Distance returns the total distance this courier has travelled.
func (d *Courier) Distance() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.distance
}

func (d *Courier) run(ctx context.Context, s *Shop) {
	log.WithField("courier_id", d.ID).Debug("delivery worker up")
	defer log.WithField("courier_id", d.ID).Debug("delivery worker down")

	backoff := time.NewTicker(s.cfg.DeliveryBackoff)
	defer backoff.Stop()

	for {
		batch := s.store.ClaimCookedBatch(d.ID, s.cfg.BatchSize)
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-s.cookedWake:
			case <-backoff.C:
			}
			continue
		}

		d.busy.Store(true)
		err := d.deliver(ctx, s, batch)
		d.busy.Store(false)
		if err != nil {
			return
		}
		d.delivered.Add(int64(len(batch)))

		if err := sleepCtx(ctx, s.cfg.DeliveryRest); err != nil {
			return
		}
	}
}

// deliver travels to each destination in the batch in turn. Travel time
// is distance*1000/k, slept as milliseconds.
func (d *Courier) deliver(ctx context.Context, s *Shop, batch []int) error {
	var total float64
	for _, id := range batch {
		o, ok := s.store.Get(id)
		if !ok {
			continue
		}
		dist := math.Hypot(float64(o.X), float64(o.Y))
		travelMS := dist * 1000 / float64(s.cfg.SpeedK)

		if err := sleepCtx(ctx, time.Duration(travelMS*float64(time.Millisecond))); err != nil {
			return err
		}
		if !s.store.Advance(id, StatusDelivered) {
			continue
		}
		total += dist
		log.WithFields(log.Fields{
			"order_id":    id,
			"courier_id":  d.ID,
			"travel_time": int(travelMS),
		}).Info("order delivered")
	}

	d.mu.Lock()
	d.distance += total
	d.mu.Unlock()
	return nil
}
