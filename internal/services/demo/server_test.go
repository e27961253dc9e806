package demo

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/loadguard/internal/platform/timeouts"
	"github.com/louisbranch/loadguard/internal/store"
)

func TestNewServerDefaultsToMemoryBackend(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(ServerConfig{HTTPAddr: "127.0.0.1:0", Shape: store.ShapeSequence})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.pump != nil {
		t.Fatal("memory backend should not start a queue pump")
	}
	if srv.httpServer.ReadHeaderTimeout != timeouts.ReadHeader {
		t.Fatalf("ReadHeaderTimeout = %v, want %v", srv.httpServer.ReadHeaderTimeout, timeouts.ReadHeader)
	}
}

func TestServerListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(ServerConfig{HTTPAddr: "127.0.0.1:0", PendingGuard: true})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}

func TestNilServerListenAndServe(t *testing.T) {
	t.Parallel()

	var srv *Server
	if err := srv.ListenAndServe(context.Background()); err == nil {
		t.Fatal("ListenAndServe() error = nil, want error")
	}
}
