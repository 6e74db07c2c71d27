// Package server exposes the shop over a line-oriented TCP protocol.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"pideshop/internal/shop"
)

// Server accepts client connections and runs one session handler per
// connection.
type Server struct {
	shop         *shop.Shop
	pollInterval time.Duration
	ln           net.Listener
}

// New wraps a shop. pollInterval is how often sessions recheck their
// orders for completion; zero means one second.
func New(sh *shop.Shop, pollInterval time.Duration) *Server {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Server{shop: sh, pollInterval: pollInterval}
}

// Listen binds the TCP address.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.WithField("addr", ln.Addr().String()).Info("PideShop active, waiting for connections")
	return nil
}

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve runs the accept loop until the context is cancelled. Each
// connection gets its own goroutine; session lifetimes are not bounded
// by Serve returning.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.WithError(err).Error("accept failed")
			continue
		}
		go s.handle(ctx, conn)
	}
}
