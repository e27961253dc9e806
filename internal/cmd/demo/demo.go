// Package demo parses demo command flags and launches the demo server.
package demo

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	entrypoint "github.com/louisbranch/loadguard/internal/platform/cmd"
	"github.com/louisbranch/loadguard/internal/platform/timeouts"
	demoserver "github.com/louisbranch/loadguard/internal/services/demo"
	"github.com/louisbranch/loadguard/internal/store"
)

// Config holds demo command configuration. Variables are read as
// LOADGUARD_DEMO_<NAME>.
type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:"localhost:8095"`
	RedisAddr    string        `env:"REDIS_ADDR"`
	Shape        string        `env:"SHAPE" envDefault:"sequence"`
	LoadDelay    time.Duration `env:"LOAD_DELAY" envDefault:"2s"`
	LoadRate     float64       `env:"LOAD_RATE" envDefault:"5"`
	PendingGuard bool          `env:"PENDING_GUARD"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseScopedConfig(&cfg, "demo"); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address; empty keeps state in memory")
	fs.StringVar(&cfg.Shape, "shape", cfg.Shape, "Active requests shape: sequence or mapping")
	fs.DurationVar(&cfg.LoadDelay, "load-delay", cfg.LoadDelay, "Simulated load duration")
	fs.Float64Var(&cfg.LoadRate, "load-rate", cfg.LoadRate, "Maximum simulated loads started per second; 0 is unlimited")
	fs.BoolVar(&cfg.PendingGuard, "pending-guard", cfg.PendingGuard, "Keep the placeholder until each load is acknowledged")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if _, ok := store.ParseShape(cfg.Shape); !ok {
		return Config{}, fmt.Errorf("unknown shape %q: want sequence or mapping", cfg.Shape)
	}
	if cfg.LoadDelay < 0 {
		return Config{}, fmt.Errorf("load delay must not be negative: %s", cfg.LoadDelay)
	}
	return cfg, nil
}

// Run starts the demo server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDemo, func(ctx context.Context) error {
		shape, _ := store.ParseShape(cfg.Shape)

		var rdb *redis.Client
		if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
			rdb = redis.NewClient(&redis.Options{Addr: addr})
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Printf("close redis: %v", err)
				}
			}()
			pingCtx, cancel := context.WithTimeout(ctx, timeouts.RedisPing)
			err := rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				return fmt.Errorf("ping redis %s: %w", addr, err)
			}
		}

		server, err := demoserver.NewServer(demoserver.ServerConfig{
			HTTPAddr:     cfg.HTTPAddr,
			Redis:        rdb,
			Shape:        shape,
			LoadDelay:    cfg.LoadDelay,
			LoadRate:     cfg.LoadRate,
			PendingGuard: cfg.PendingGuard,
		})
		if err != nil {
			return fmt.Errorf("init demo server: %w", err)
		}
		log.Printf("demo listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve demo: %w", err)
		}
		return nil
	})
}
