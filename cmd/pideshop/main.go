package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"pideshop/internal/config"
	"pideshop/internal/logging"
	"pideshop/internal/prep"
	"pideshop/internal/server"
	"pideshop/internal/shop"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Setup(cfg.LogFile, cfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shopCfg := shop.DefaultConfig()
	shopCfg.Cooks = cfg.CookPoolSize
	shopCfg.Couriers = cfg.DeliveryPoolSize
	shopCfg.SpeedK = cfg.SpeedK
	shopCfg.OvenOpenings = cfg.OvenOpenings
	shopCfg.OvenCapacity = cfg.OvenCapacity
	shopCfg.BatchSize = cfg.BatchSize
	shopCfg.StoreCapacity = cfg.StoreCapacity

	sh := shop.New(shopCfg, prep.NewPseudoInverse())
	sh.Start(ctx)

	srv := server.New(sh, 0)
	if err := srv.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.WithError(err).Error("failed to bind")
		sh.Shutdown()
		os.Exit(1)
	}
	if err := srv.Serve(ctx); err != nil {
		log.WithError(err).Error("server stopped")
	}

	sh.Shutdown()
}
