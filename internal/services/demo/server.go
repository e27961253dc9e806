package demo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/loadguard/internal/loader"
	"github.com/louisbranch/loadguard/internal/platform/timeouts"
	"github.com/louisbranch/loadguard/internal/store"
)

// ServerConfig configures the demo server.
type ServerConfig struct {
	HTTPAddr string
	// Redis selects the Redis backend; nil keeps state in memory.
	Redis        *redis.Client
	Shape        store.Shape
	LoadDelay    time.Duration
	LoadRate     float64
	PendingGuard bool
}

// Server runs the demo HTTP server, its load worker and, for Redis, the
// queue pump.
type Server struct {
	httpServer *http.Server
	worker     *Worker
	pump       func(context.Context) error
}

// NewServer composes the backend, worker and handler.
func NewServer(cfg ServerConfig) (*Server, error) {
	var handler *Handler
	workerCfg := WorkerConfig{
		Delay:     cfg.LoadDelay,
		PerSecond: cfg.LoadRate,
	}
	if cfg.PendingGuard {
		workerCfg.OnFinish = func(a LoadAction) { handler.Acknowledge(a) }
	}

	var (
		backend Backend
		worker  *Worker
		pump    func(context.Context) error
	)
	if cfg.Redis != nil {
		rb, w := NewRedisBackend(cfg.Redis, cfg.Shape, workerCfg)
		backend, worker = rb, w
		pump = func(ctx context.Context) error { return rb.Pump(ctx, w) }
	} else {
		backend, worker = NewMemoryBackend(cfg.Shape, workerCfg)
	}

	var opts []loader.Option
	if cfg.PendingGuard {
		opts = append(opts, loader.WithPendingGuard())
	}
	handler, err := NewHandler(backend, opts...)
	if err != nil {
		return nil, fmt.Errorf("build demo handler: %w", err)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		worker: worker,
		pump:   pump,
	}, nil
}

// ListenAndServe serves HTTP traffic and runs loads until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("demo server is nil")
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.worker.Run(ctx) })
	if s.pump != nil {
		g.Go(func() error { return s.pump(ctx) })
	}
	g.Go(func() error { return s.serve(ctx) })
	return g.Wait()
}

func (s *Server) serve(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown demo http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve demo http: %w", err)
	}
}
