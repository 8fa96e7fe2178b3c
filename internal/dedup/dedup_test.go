package dedup

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_FirstDelivery(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Error("first delivery should not be seen")
	}

	seen, err = store.Seen(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Error("second delivery of the same id should be seen")
	}
}

func TestMemoryStore_DistinctIDs(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	store.Seen(ctx, "delivery-1")
	seen, _ := store.Seen(ctx, "delivery-2")
	if seen {
		t.Error("distinct delivery ids must not collide")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Seen(ctx, "delivery-1")

	// Advance past the TTL; the entry must be forgotten
	now = now.Add(2 * time.Minute)

	seen, err := store.Seen(ctx, "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Error("expired delivery id should be treated as new")
	}
}
