// Package timeouts defines shared timeout constants used by the demo
// service and its stores.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// RedisPing caps the startup connectivity check against Redis.
const RedisPing = 2 * time.Second

// QueuePoll is how long one blocking queue pop waits before the caller
// rechecks its context.
const QueuePoll = time.Second
