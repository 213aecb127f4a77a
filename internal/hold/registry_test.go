package hold

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireConflictAndRefresh(t *testing.T) {
	r := NewRegistry(5 * time.Minute)
	if err := r.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := r.Acquire(1, "A1", 20); err != ErrHoldConflict {
		t.Fatalf("expected ErrHoldConflict for second holder, got %v", err)
	}
	// Same holder refreshes idempotently.
	if err := r.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("refresh by owner: %v", err)
	}
	// A different seat on the same slot is independent.
	if err := r.Acquire(1, "A2", 20); err != nil {
		t.Fatalf("acquire of free seat: %v", err)
	}
}

func TestConcurrentAcquireExactlyOneWinner(t *testing.T) {
	r := NewRegistry(5 * time.Minute)
	const holders = 50
	var wins atomic.Int32
	var wg sync.WaitGroup
	for h := 1; h <= holders; h++ {
		wg.Add(1)
		go func(holderID uint64) {
			defer wg.Done()
			if err := r.Acquire(7, "C4", holderID); err == nil {
				wins.Add(1)
			}
		}(uint64(h))
	}
	wg.Wait()
	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}
	if holds := r.List(7); len(holds) != 1 {
		t.Fatalf("expected one hold in slot, got %d", len(holds))
	}
}

func TestReleaseOwnership(t *testing.T) {
	r := NewRegistry(5 * time.Minute)
	if err := r.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if r.Release(1, "A1", 99) {
		t.Fatal("foreign release must be a no-op")
	}
	if !r.Release(1, "A1", 10) {
		t.Fatal("owner release must succeed")
	}
	if r.Release(1, "A1", 10) {
		t.Fatal("double release must be a no-op")
	}
	if err := r.Acquire(1, "A1", 20); err != nil {
		t.Fatalf("released seat must be acquirable: %v", err)
	}
}

func TestReleaseAllForHolderSpansSlots(t *testing.T) {
	r := NewRegistry(5 * time.Minute)
	for _, k := range []SeatKey{{1, "A1"}, {1, "A2"}, {2, "B1"}} {
		if err := r.Acquire(k.SlotID, k.SeatLabel, 10); err != nil {
			t.Fatalf("acquire %v: %v", k, err)
		}
	}
	if err := r.Acquire(2, "B2", 20); err != nil {
		t.Fatalf("acquire for other holder: %v", err)
	}
	released := r.ReleaseAllForHolder(10)
	if len(released) != 3 {
		t.Fatalf("expected 3 released keys, got %d", len(released))
	}
	if holds := r.List(2); len(holds) != 1 || holds["B2"] != 20 {
		t.Fatalf("other holder's hold must survive, got %v", holds)
	}
	if holds := r.List(1); len(holds) != 0 {
		t.Fatalf("slot 1 should be empty, got %v", holds)
	}
}

func TestExpiryAllowsReacquire(t *testing.T) {
	current := time.Unix(1000, 0)
	r := NewRegistryWithClock(5*time.Minute, func() time.Time { return current })
	if err := r.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// Just before expiry the hold still blocks others.
	current = current.Add(5*time.Minute - time.Second)
	if err := r.Acquire(1, "A1", 20); err != ErrHoldConflict {
		t.Fatalf("expected conflict before expiry, got %v", err)
	}
	current = current.Add(2 * time.Second)
	if err := r.Acquire(1, "A1", 20); err != nil {
		t.Fatalf("expected acquire to win after expiry, got %v", err)
	}
}

func TestSweepExpiredRemovesOnlyStale(t *testing.T) {
	current := time.Unix(1000, 0)
	r := NewRegistryWithClock(5*time.Minute, func() time.Time { return current })
	if err := r.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("acquire A1: %v", err)
	}
	current = current.Add(3 * time.Minute)
	if err := r.Acquire(1, "A2", 20); err != nil {
		t.Fatalf("acquire A2: %v", err)
	}
	current = current.Add(3 * time.Minute)
	expired := r.SweepExpired()
	if len(expired) != 1 || expired[0] != (SeatKey{1, "A1"}) {
		t.Fatalf("expected only A1 swept, got %v", expired)
	}
	if holds := r.List(1); len(holds) != 1 || holds["A2"] != 20 {
		t.Fatalf("A2 must remain held, got %v", holds)
	}
	// ListHolds must not report the swept seat.
	if _, ok := r.List(1)["A1"]; ok {
		t.Fatal("swept hold still listed")
	}
}

func TestMissingOrForeign(t *testing.T) {
	current := time.Unix(1000, 0)
	r := NewRegistryWithClock(5*time.Minute, func() time.Time { return current })
	_ = r.Acquire(1, "A1", 10)
	_ = r.Acquire(1, "A2", 20)
	current = current.Add(6 * time.Minute)
	_ = r.Acquire(1, "A3", 10) // fresh
	failing := r.MissingOrForeign(1, []string{"A1", "A2", "A3", "A4"}, 10)
	want := map[string]bool{"A1": true, "A2": true, "A4": true}
	if len(failing) != len(want) {
		t.Fatalf("failing = %v, want keys %v", failing, want)
	}
	for _, label := range failing {
		if !want[label] {
			t.Fatalf("unexpected failing seat %q", label)
		}
	}
}
