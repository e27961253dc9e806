package demo

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/louisbranch/loadguard/internal/platform/timeouts"
	"github.com/louisbranch/loadguard/internal/store"
	"github.com/louisbranch/loadguard/internal/store/memstore"
	"github.com/louisbranch/loadguard/internal/store/redisstore"
)

// Backend is a store the panel reads from and the worker completes loads in.
type Backend interface {
	store.View
	Finisher
}

// MemoryBackend keeps demo state in process.
type MemoryBackend struct {
	*memstore.Store
}

// NewMemoryBackend creates an in-process backend whose dispatches mark the
// request kind active and hand the load to a worker.
func NewMemoryBackend(shape store.Shape, cfg WorkerConfig) (*MemoryBackend, *Worker) {
	b := &MemoryBackend{}
	w := NewWorker(b, cfg)
	b.Store = memstore.New(
		memstore.WithShape(shape),
		memstore.WithReducer(func(ctx context.Context, s *memstore.Store, action any) error {
			a, ok := action.(LoadAction)
			if !ok {
				return nil
			}
			s.Begin(a.Type)
			if err := w.Submit(ctx, a); err != nil {
				s.End(a.Type)
				return err
			}
			return nil
		}),
	)
	return b, w
}

// Finish implements Finisher.
func (b *MemoryBackend) Finish(_ context.Context, kind, key, value string) error {
	if key != "" {
		b.Set(key, value)
	}
	b.End(kind)
	return nil
}

// RedisBackend keeps demo state in Redis. Dispatch enqueues actions in
// Redis; Pump feeds them to a worker.
type RedisBackend struct {
	*redisstore.Store
}

// NewRedisBackend creates a Redis backend and its worker.
func NewRedisBackend(rdb *redis.Client, shape store.Shape, cfg WorkerConfig) (*RedisBackend, *Worker) {
	b := &RedisBackend{
		Store: redisstore.New(rdb,
			redisstore.WithPrefix("loadguard:demo"),
			redisstore.WithShape(shape),
			redisstore.WithRequestStateOf(requestStateOf),
		),
	}
	return b, NewWorker(b, cfg)
}

// Finish implements Finisher.
func (b *RedisBackend) Finish(ctx context.Context, kind, key, value string) error {
	if key != "" {
		if err := b.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return b.End(ctx, kind)
}

// Pump moves queued actions from Redis to w until ctx is done.
func (b *RedisBackend) Pump(ctx context.Context, w *Worker) error {
	for ctx.Err() == nil {
		payload, ok, err := b.Next(ctx, timeouts.QueuePoll)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !ok {
			continue
		}
		var a LoadAction
		if err := redisstore.Decode(payload, &a); err != nil {
			log.Printf("demo pump: drop undecodable action %q: %v", payload, err)
			continue
		}
		if err := w.Submit(ctx, a); err != nil {
			b.abandon(ctx, a, err)
			return nil
		}
	}
	return nil
}

// abandon clears the request kind of an action that was popped from the
// queue but never reached the worker.
func (b *RedisBackend) abandon(ctx context.Context, a LoadAction, cause error) {
	log.Printf("demo pump: dropped %s after dequeue: %v", a.Type, cause)
	endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.RedisPing)
	defer cancel()
	if err := b.End(endCtx, a.Type); err != nil {
		log.Printf("demo pump: clear %s: %v", a.Type, err)
	}
}
