package hold

import (
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu       sync.Mutex
	released []SeatKey
}

func (n *recordingNotifier) SeatReleased(slotID uint64, seatLabel string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.released = append(n.released, SeatKey{SlotID: slotID, SeatLabel: seatLabel})
}

func (n *recordingNotifier) events() []SeatKey {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SeatKey, len(n.released))
	copy(out, n.released)
	return out
}

func TestSweepNotifiesPerSeat(t *testing.T) {
	current := time.Unix(1000, 0)
	r := NewRegistryWithClock(time.Minute, func() time.Time { return current })
	_ = r.Acquire(1, "A1", 10)
	_ = r.Acquire(2, "B5", 10)
	current = current.Add(2 * time.Minute)

	n := &recordingNotifier{}
	s := NewSweeper(r, n, time.Minute)
	s.sweep()

	got := n.events()
	if len(got) != 2 {
		t.Fatalf("expected 2 release notifications, got %v", got)
	}
	seen := map[SeatKey]bool{}
	for _, k := range got {
		seen[k] = true
	}
	if !seen[(SeatKey{1, "A1"})] || !seen[(SeatKey{2, "B5"})] {
		t.Fatalf("missing notifications, got %v", got)
	}
}

func TestSweepIdempotentOnEmptyRegistry(t *testing.T) {
	r := NewRegistry(time.Minute)
	n := &recordingNotifier{}
	s := NewSweeper(r, n, time.Minute)
	s.sweep()
	s.sweep()
	if len(n.events()) != 0 {
		t.Fatalf("no notifications expected, got %v", n.events())
	}
}
