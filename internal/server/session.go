// This file contains the per-connection session handler: ingest a batch
// of orders, poll until they settle, report back.

package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pideshop/internal/shop"
)

const (
	// terminateSentinel cancels the rest of a client's batch.
	terminateSentinel = "TERMINATE"

	servedMessage    = "All customers served"
	cancelledMessage = "Orders cancelled"
)

// handle runs one client session. Protocol: the first line is
// "<pid> <orderCount>", then orderCount lines of either "<id> <x> <y>"
// or "TERMINATE <pid>".
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	lg := log.WithField("session_id", uuid.NewString())
	sc := bufio.NewScanner(conn)

	if !sc.Scan() {
		lg.WithError(sc.Err()).Error("failed to read session header")
		return
	}
	var clientPID, orderCount int
	if _, err := fmt.Sscanf(strings.TrimSpace(sc.Text()), "%d %d", &clientPID, &orderCount); err != nil {
		lg.WithError(err).Error("malformed session header")
		return
	}

	// The session's customer identity is assigned by the server, not
	// taken from the client PID. The per-line client ID is ignored.
	customerID := s.shop.NextCustomerID()
	lg = lg.WithFields(log.Fields{"client_pid": clientPID, "customer_id": customerID})

	inserted, cancelled := s.ingest(lg, sc, customerID, orderCount)
	lg.WithFields(log.Fields{"orders": inserted, "cancelled": cancelled}).Info("new customer, serving")

	s.shop.SessionStarted()
	defer s.shop.SessionEnded()

	allDelivered := s.awaitSettled(ctx, customerID)

	msg := cancelledMessage
	if allDelivered && !cancelled {
		msg = servedMessage
	}
	if _, err := fmt.Fprintln(conn, msg); err != nil {
		lg.WithError(err).Error("failed to send completion message")
	}

	cookID, cooked := s.shop.BusiestCook()
	courierID, delivered := s.shop.BusiestCourier()
	lg.WithFields(log.Fields{
		"best_cook":       cookID,
		"cooked":          cooked,
		"best_courier":    courierID,
		"delivered":       delivered,
		"active_sessions": s.shop.ActiveSessions(),
	}).Info("done serving client")
}

// ingest reads up to orderCount order lines. A read failure aborts the
// loop early and the partial batch stands.
func (s *Server) ingest(lg *log.Entry, sc *bufio.Scanner, customerID, orderCount int) (inserted int, cancelled bool) {
	for i := 0; i < orderCount; i++ {
		if !sc.Scan() {
			lg.WithError(sc.Err()).Error("failed to read order line, accepting partial batch")
			return inserted, false
		}
		line := strings.TrimSpace(sc.Text())

		if strings.HasPrefix(line, terminateSentinel) {
			n := s.shop.CancelOrders(customerID)
			lg.WithField("cancelled_orders", n).Info("termination signal from client, orders cancelled")
			return inserted, true
		}

		var lineID, x, y int
		if _, err := fmt.Sscanf(line, "%d %d %d", &lineID, &x, &y); err != nil {
			lg.WithField("line", line).WithError(err).Error("malformed order line, skipping")
			continue
		}
		if _, err := s.shop.PlaceOrder(customerID, x, y); err != nil {
			if errors.Is(err, shop.ErrStoreFull) {
				lg.WithError(err).Error("order rejected, store full")
				continue
			}
			lg.WithError(err).Error("failed to place order")
			continue
		}
		inserted++
	}
	return inserted, false
}

// awaitSettled polls until every order of the customer is terminal and
// reports whether all of them were delivered. On shutdown the discard
// sweep settles the orders, so the loop still terminates.
func (s *Server) awaitSettled(ctx context.Context, customerID int) bool {
	tick := time.NewTicker(s.pollInterval)
	defer tick.Stop()

	for {
		settled, allDelivered := s.shop.Store().AllSettled(customerID)
		if settled {
			return allDelivered
		}
		select {
		case <-ctx.Done():
			// One final check after the shutdown sweep.
			_, allDelivered := s.shop.Store().AllSettled(customerID)
			return allDelivered
		case <-tick.C:
		}
	}
}
