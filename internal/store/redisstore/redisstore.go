// Package redisstore provides a store.View backed by Redis.
//
// Active request kinds live under <prefix>:active as a set (sequence shape)
// or a hash of kind to start time (mapping shape). Dispatched actions are
// JSON-encoded and pushed onto the <prefix>:queue list for workers; other
// state values are strings in the <prefix>:state hash.
package redisstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
	"github.com/louisbranch/loadguard/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestStateFunc maps a dispatched action to the request kind it starts.
type RequestStateFunc func(action any) (string, bool)

// Store reads and writes loader state in Redis.
type Store struct {
	rdb *redis.Client

	prefix string
	shape  store.Shape
	// stateOf marks request kinds active in the same transaction as the
	// enqueue, so a reader never sees the action queued but not active.
	stateOf RequestStateFunc
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix (default "loadguard").
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = strings.Trim(prefix, ":") }
}

// WithShape sets how active requests are stored and read.
func WithShape(shape store.Shape) Option {
	return func(s *Store) { s.shape = shape }
}

// WithRequestStateOf marks the returned kind active on dispatch.
func WithRequestStateOf(fn RequestStateFunc) Option {
	return func(s *Store) { s.stateOf = fn }
}

// New creates a Redis-backed store.
func New(rdb *redis.Client, opts ...Option) *Store {
	s := &Store{
		rdb:    rdb,
		prefix: "loadguard",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) activeKey() string { return s.prefix + ":active" }
func (s *Store) queueKey() string  { return s.prefix + ":queue" }
func (s *Store) stateKey() string  { return s.prefix + ":state" }

// Read returns the state hash plus active requests in the configured shape.
// Sequence-shaped kinds are sorted since Redis sets are unordered.
func (s *Store) Read(ctx context.Context) (store.State, error) {
	pipe := s.rdb.Pipeline()
	values := pipe.HGetAll(ctx, s.stateKey())
	var members *redis.StringSliceCmd
	var fields *redis.MapStringStringCmd
	if s.shape == store.ShapeMapping {
		fields = pipe.HGetAll(ctx, s.activeKey())
	} else {
		members = pipe.SMembers(ctx, s.activeKey())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreRead, "read redis state", err)
	}

	state := make(store.State, len(values.Val())+1)
	for key, value := range values.Val() {
		state[key] = value
	}
	if fields != nil {
		state[store.ActiveRequestsKey] = fields.Val()
	} else {
		active := members.Val()
		sort.Strings(active)
		state[store.ActiveRequestsKey] = active
	}
	return state, nil
}

// Dispatch enqueues the JSON-encoded action.
func (s *Store) Dispatch(ctx context.Context, action any) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDispatchFailed, "encode action", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if s.stateOf != nil {
			if name, ok := s.stateOf(action); ok {
				s.begin(ctx, pipe, name)
			}
		}
		pipe.RPush(ctx, s.queueKey(), payload)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDispatchFailed, "enqueue action", err)
	}
	return nil
}

// Begin marks a request kind as active.
func (s *Store) Begin(ctx context.Context, name string) error {
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		s.begin(ctx, pipe, name)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStoreWrite, "begin request", err)
	}
	return nil
}

func (s *Store) begin(ctx context.Context, pipe redis.Pipeliner, name string) {
	if s.shape == store.ShapeMapping {
		pipe.HSet(ctx, s.activeKey(), name, s.now().UTC().Format(time.RFC3339Nano))
		return
	}
	pipe.SAdd(ctx, s.activeKey(), name)
}

// End clears an active request kind.
func (s *Store) End(ctx context.Context, name string) error {
	var err error
	if s.shape == store.ShapeMapping {
		err = s.rdb.HDel(ctx, s.activeKey(), name).Err()
	} else {
		err = s.rdb.SRem(ctx, s.activeKey(), name).Err()
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStoreWrite, "end request", err)
	}
	return nil
}

// Set stores a string state value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.HSet(ctx, s.stateKey(), key, value).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreWrite, "set state", err)
	}
	return nil
}

// Next blocks up to timeout for the next queued action payload. ok is false
// when the wait timed out.
func (s *Store) Next(ctx context.Context, timeout time.Duration) (payload []byte, ok bool, err error) {
	res, err := s.rdb.BLPop(ctx, timeout, s.queueKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeStoreRead, "pop action", err)
	}
	// BLPOP replies with [key, value].
	if len(res) != 2 {
		return nil, false, apperrors.New(apperrors.CodeStoreRead, "unexpected BLPOP reply")
	}
	return []byte(res[1]), true, nil
}

// Decode unmarshals a payload returned by Next.
func Decode(payload []byte, v any) error {
	return json.Unmarshal(payload, v)
}
