package workers

import (
	"context"
	"testing"
	"time"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/service"
)

func TestJanitor_PrunesExpiredSearches(t *testing.T) {
	registry := service.NewSearchRegistry(time.Millisecond)
	registry.Create("stale-1", "usd", nil)
	registry.Create("stale-2", "usd", nil)

	janitor := NewJanitor(registry, 5*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for registry.Len() > 0 {
		select {
		case <-deadline:
			t.Fatalf("expected registry to drain, %d entries left", registry.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}

func TestJanitor_StopsOnCancel(t *testing.T) {
	registry := service.NewSearchRegistry(time.Hour)
	janitor := NewJanitor(registry, time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on pre-cancelled context")
	}
}
