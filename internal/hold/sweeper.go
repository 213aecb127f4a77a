package hold

import (
	"context"
	"log"
	"time"
)

// Notifier is the slice of the presence channel the sweeper needs: telling
// a room that a seat went back to available.
type Notifier interface {
	SeatReleased(slotID uint64, seatLabel string)
}

// Sweeper periodically evicts expired holds from a Registry and notifies
// room subscribers of each released seat. Sweeping is best-effort and
// idempotent; holds removed concurrently by a release or commit simply do
// not show up in the sweep.
type Sweeper struct {
	registry *Registry
	notifier Notifier
	interval time.Duration
}

// NewSweeper wires a Sweeper to a registry and a presence notifier.
func NewSweeper(registry *Registry, notifier Notifier, interval time.Duration) *Sweeper {
	return &Sweeper{registry: registry, notifier: notifier, interval: interval}
}

// Run ticks until ctx is cancelled. Call it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	expired := s.registry.SweepExpired()
	if len(expired) == 0 {
		return
	}
	log.Printf("hold-sweeper: reclaimed %d expired hold(s)", len(expired))
	for _, key := range expired {
		s.notifier.SeatReleased(key.SlotID, key.SeatLabel)
	}
}
