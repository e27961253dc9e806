package demo

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Finisher completes a load in the backing store: it writes the loaded
// value (when key is non-empty) and clears the request kind.
type Finisher interface {
	Finish(ctx context.Context, kind, key, value string) error
}

// WorkerConfig paces simulated loads.
type WorkerConfig struct {
	// Delay is how long each load takes.
	Delay time.Duration
	// PerSecond caps how many loads start per second; zero is unlimited.
	PerSecond float64
	// OnFinish is called after a load completes.
	OnFinish func(LoadAction)
}

// Worker runs queued loads one at a time.
type Worker struct {
	jobs     chan LoadAction
	limiter  *rate.Limiter
	delay    time.Duration
	finisher Finisher
	onFinish func(LoadAction)
}

// NewWorker creates a worker that completes loads through finisher.
func NewWorker(finisher Finisher, cfg WorkerConfig) *Worker {
	limit := rate.Inf
	if cfg.PerSecond > 0 {
		limit = rate.Limit(cfg.PerSecond)
	}
	return &Worker{
		jobs:     make(chan LoadAction, 64),
		limiter:  rate.NewLimiter(limit, 1),
		delay:    cfg.Delay,
		finisher: finisher,
		onFinish: cfg.OnFinish,
	}
}

// Submit queues a load, blocking while the queue is full.
func (w *Worker) Submit(ctx context.Context, a LoadAction) error {
	select {
	case w.jobs <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes loads until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-w.jobs:
			if err := w.process(ctx, a); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("demo worker: %s: %v", a.Type, err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, a LoadAction) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	key, value, _ := result(a)
	if err := w.finisher.Finish(ctx, a.Type, key, value); err != nil {
		return err
	}
	if w.onFinish != nil {
		w.onFinish(a)
	}
	return nil
}
