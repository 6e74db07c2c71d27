// This file contains the Shop, the owned context object every worker is
// constructed with, and the shutdown coordinator.

package shop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"pideshop/internal/prep"
)

// Config carries the pool sizes and simulation tunables.
type Config struct {
	Cooks    int // cook pool size
	Couriers int // delivery pool size
	SpeedK   int // delivery speed constant; larger k means shorter travel

	OvenOpenings  int64
	OvenCapacity  int64
	BatchSize     int // max cooked orders one courier carries
	StoreCapacity int

	CookIdle        time.Duration // cook rescan interval when nothing is placed
	DeliveryBackoff time.Duration // courier rescan interval when nothing is cooked
	DeliveryRest    time.Duration // courier pause after finishing a batch
}

// DefaultConfig fills the simulation constants the CLI does not expose.
func DefaultConfig() Config {
	return Config{
		OvenOpenings:    2,
		OvenCapacity:    6,
		BatchSize:       3,
		StoreCapacity:   500,
		CookIdle:        time.Second,
		DeliveryBackoff: 100 * time.Millisecond,
		DeliveryRest:    time.Second,
	}
}

// Shop owns the order store, the oven, both worker pools and the
// per-stage wake channels. All mutation goes through the store's
// operations; workers never touch order fields directly.
type Shop struct {
	cfg       Config
	store     *Store
	oven      *Oven
	estimator prep.Estimator

	cooks    []*Cook
	couriers []*Courier

	// Wake channels make discovery event-driven: an insert nudges the
	// cooks, a finished cook nudges the couriers. Claims still go
	// through the store's atomic scan, so a dropped nudge only delays
	// discovery until the next rescan tick.
	placedWake chan struct{}
	cookedWake chan struct{}

	activeSessions atomic.Int64
	nextCustomer   atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a shop. The estimator is injectable so tests can supply a
// deterministic preparation cost.
func New(cfg Config, estimator prep.Estimator) *Shop {
	s := &Shop{
		cfg:        cfg,
		store:      NewStore(cfg.StoreCapacity),
		oven:       NewOven(cfg.OvenOpenings, cfg.OvenCapacity),
		estimator:  estimator,
		placedWake: make(chan struct{}, 1),
		cookedWake: make(chan struct{}, 1),
	}
	for i := 0; i < cfg.Cooks; i++ {
		s.cooks = append(s.cooks, &Cook{ID: i})
	}
	for i := 0; i < cfg.Couriers; i++ {
		s.couriers = append(s.couriers, &Courier{ID: i})
	}
	return s
}

// Start launches both worker pools. Workers run until the context is
// cancelled or Shutdown is called.
func (s *Shop) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, c := range s.cooks {
		s.wg.Add(1)
		go func(c *Cook) {
			defer s.wg.Done()
			c.run(ctx, s)
		}(c)
	}
	for _, d := range s.couriers {
		s.wg.Add(1)
		go func(d *Courier) {
			defer s.wg.Done()
			d.run(ctx, s)
		}(d)
	}
	log.WithFields(log.Fields{"cooks": s.cfg.Cooks, "couriers": s.cfg.Couriers}).Info("shop open")
}

// Shutdown is the coordinator: it marks every non-terminal order
// Discarded, cancels the workers and waits for them to exit. Workers
// stop at their next context check; sleeps and oven waits all observe
// the context, so no permit stays held.
func (s *Shop) Shutdown() {
	log.Info("shop shutting down")
	discarded := s.store.DiscardAll()
	if discarded > 0 {
		log.WithField("count", discarded).Info("open orders discarded")
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Info("shop closed")
}

// Store exposes the order store for session handlers and tests.
func (s *Shop) Store() *Store { return s.store }

// PlaceOrder inserts a Placed order and wakes the cook pool.
func (s *Shop) PlaceOrder(customerID, x, y int) (int, error) {
	id, err := s.store.Insert(customerID, x, y)
	if err != nil {
		return 0, err
	}
	wake(s.placedWake)
	return id, nil
}

// CancelOrders discards every open order of one customer.
func (s *Shop) CancelOrders(customerID int) int {
	return s.store.MarkDiscarded(customerID)
}

// NextCustomerID hands out the session-scoped customer identity.
func (s *Shop) NextCustomerID() int {
	return int(s.nextCustomer.Add(1) - 1)
}

// SessionStarted and SessionEnded maintain the active-session count the
// operator report includes.
func (s *Shop) SessionStarted() int64 { return s.activeSessions.Add(1) }
func (s *Shop) SessionEnded() int64   { return s.activeSessions.Add(-1) }
func (s *Shop) ActiveSessions() int64 { return s.activeSessions.Load() }

// BusiestCook returns the cook with the most completed orders.
func (s *Shop) BusiestCook() (id int, cooked int64) {
	for _, c := range s.cooks {
		if n := c.cooked.Load(); n > cooked {
			id, cooked = c.ID, n
		}
	}
	return id, cooked
}

// BusiestCourier returns the delivery worker with the most deliveries.
func (s *Shop) BusiestCourier() (id int, delivered int64) {
	for _, d := range s.couriers {
		if n := d.delivered.Load(); n > delivered {
			id, delivered = d.ID, n
		}
	}
	return id, delivered
}

// wake performs a non-blocking nudge on a wake channel.
func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
