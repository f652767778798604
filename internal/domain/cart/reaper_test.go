package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/your-org/cart-service/internal/domain/cart"
	memqueue "github.com/your-org/cart-service/internal/infrastructure/queue/memory"
	memstore "github.com/your-org/cart-service/internal/infrastructure/store/memory"
)

func TestReaperDeletesReferencedEntries(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	queue := memqueue.New(16, 20*time.Millisecond)

	sourceKey := cart.AnonymousKey("c1")
	expires := time.Now().Add(time.Hour)
	if _, err := store.AddAndSet(ctx, sourceKey, cart.ItemKey("p1"), 2, nil, expires); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if _, err := store.AddAndSet(ctx, sourceKey, cart.ItemKey("p2"), 1, nil, expires); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	for _, itemKey := range []string{cart.ItemKey("p1"), cart.ItemKey("p2")} {
		msg := cart.DeferredDeletion{IdentityKey: sourceKey, ItemKey: itemKey}
		if err := queue.Enqueue(ctx, msg); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	// Redelivery of an already-consumed message must be harmless.
	if err := queue.Enqueue(ctx, cart.DeferredDeletion{IdentityKey: sourceKey, ItemKey: cart.ItemKey("p1")}); err != nil {
		t.Fatalf("enqueue duplicate: %v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	reaper := cart.NewReaper(store, queue, quietLogger())
	if err := reaper.Run(runCtx); err != nil {
		t.Fatalf("reaper returned error: %v", err)
	}

	entries, err := store.Query(ctx, sourceKey)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected all entries reaped, got %d", len(entries))
	}
}

func TestReaperStopsOnCancel(t *testing.T) {
	store := memstore.New()
	queue := memqueue.New(16, 20*time.Millisecond)
	reaper := cart.NewReaper(store, queue, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reaper.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reaper returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}
