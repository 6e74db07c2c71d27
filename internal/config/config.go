// Package config parses the server command line.
package config

import (
	"flag"
	"fmt"
	"strconv"
)

// Config is the validated CLI surface:
// pideshop [flags] <port> <cookPoolSize> <deliveryPoolSize> <k>.
type Config struct {
	Port             int
	CookPoolSize     int
	DeliveryPoolSize int
	SpeedK           int

	OvenOpenings  int64
	OvenCapacity  int64
	BatchSize     int
	StoreCapacity int
	LogFile       string
	Debug         bool
}

// Parse reads flags and the four positional arguments from args
// (excluding the program name).
func Parse(args []string) (Config, error) {
	cfg := Config{
		OvenOpenings:  2,
		OvenCapacity:  6,
		BatchSize:     3,
		StoreCapacity: 500,
		LogFile:       "pide_shop_log.txt",
	}

	fs := flag.NewFlagSet("pideshop", flag.ContinueOnError)
	fs.Int64Var(&cfg.OvenOpenings, "oven-openings", cfg.OvenOpenings, "concurrent oven door slots")
	fs.Int64Var(&cfg.OvenCapacity, "oven-capacity", cfg.OvenCapacity, "oven tray slots")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "max orders per delivery batch")
	fs.IntVar(&cfg.StoreCapacity, "max-orders", cfg.StoreCapacity, "order store capacity")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append-only event log")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) != 4 {
		return Config{}, fmt.Errorf("usage: pideshop [flags] <port> <cookPoolSize> <deliveryPoolSize> <k>")
	}

	var err error
	if cfg.Port, err = positive("port", rest[0]); err != nil {
		return Config{}, err
	}
	if cfg.CookPoolSize, err = positive("cookPoolSize", rest[1]); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryPoolSize, err = positive("deliveryPoolSize", rest[2]); err != nil {
		return Config{}, err
	}
	if cfg.SpeedK, err = positive("k", rest[3]); err != nil {
		return Config{}, err
	}

	if cfg.OvenOpenings < 1 || cfg.OvenCapacity < 1 {
		return Config{}, fmt.Errorf("oven gates must admit at least one cook")
	}
	if cfg.BatchSize < 1 {
		return Config{}, fmt.Errorf("batch size must be at least 1")
	}
	if cfg.StoreCapacity < 1 {
		return Config{}, fmt.Errorf("order store capacity must be at least 1")
	}
	return cfg, nil
}

func positive(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return n, nil
}
