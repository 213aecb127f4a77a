// Package hold tracks short-lived, non-durable claims on individual seats
// so concurrent viewers can coordinate selection before committing. Holds
// live only in process memory: the durable slot_seats status never reports
// a seat as held, and the commit path is the sole authority on whether a
// held seat can actually be booked.
package hold

import (
	"errors"
	"sync"
	"time"
)

// ErrHoldConflict is returned when a seat already carries an unexpired hold
// owned by a different holder. The client should pick another seat.
var ErrHoldConflict = errors.New("seat already held")

// SeatKey identifies one seat of one showtime slot.
type SeatKey struct {
	SlotID    uint64
	SeatLabel string
}

type entry struct {
	holderID  uint64
	createdAt time.Time
}

// Registry is the process-wide hold table. It is safe for concurrent use;
// a single mutex keeps acquire/release/sweep linearizable per key. The
// registry never consults the durable seat store: a seat that is already
// booked can technically be held, and the commit step rejects it there.
type Registry struct {
	mu    sync.Mutex
	ttl   time.Duration
	holds map[SeatKey]entry
	now   func() time.Time
}

// NewRegistry returns a Registry whose holds expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:   ttl,
		holds: make(map[SeatKey]entry),
		now:   time.Now,
	}
}

// NewRegistryWithClock is NewRegistry with an injectable clock for tests.
func NewRegistryWithClock(ttl time.Duration, now func() time.Time) *Registry {
	r := NewRegistry(ttl)
	r.now = now
	return r
}

// Acquire claims a seat for holderID. A fresh hold by another holder is a
// conflict; a hold by the same holder is refreshed idempotently. An expired
// hold is treated as absent, so first-acquire-wins applies again.
func (r *Registry) Acquire(slotID uint64, seatLabel string, holderID uint64) error {
	key := SeatKey{SlotID: slotID, SeatLabel: seatLabel}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.holds[key]; ok && !r.expired(e, now) && e.holderID != holderID {
		return ErrHoldConflict
	}
	r.holds[key] = entry{holderID: holderID, createdAt: now}
	return nil
}

// Release removes holderID's hold on a seat. Missing or foreign-owned holds
// are a no-op; it reports whether a hold was actually removed.
func (r *Registry) Release(slotID uint64, seatLabel string, holderID uint64) bool {
	key := SeatKey{SlotID: slotID, SeatLabel: seatLabel}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.holds[key]; ok && e.holderID == holderID {
		delete(r.holds, key)
		return true
	}
	return false
}

// ReleaseSeats removes holderID's holds on the given seats of one slot and
// returns the labels that were actually released.
func (r *Registry) ReleaseSeats(slotID uint64, seatLabels []string, holderID uint64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var released []string
	for _, label := range seatLabels {
		key := SeatKey{SlotID: slotID, SeatLabel: label}
		if e, ok := r.holds[key]; ok && e.holderID == holderID {
			delete(r.holds, key)
			released = append(released, label)
		}
	}
	return released
}

// ReleaseAllForHolder removes every hold owned by holderID across all slots
// and returns the released keys. Used on client disconnect.
func (r *Registry) ReleaseAllForHolder(holderID uint64) []SeatKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	var released []SeatKey
	for key, e := range r.holds {
		if e.holderID == holderID {
			delete(r.holds, key)
			released = append(released, key)
		}
	}
	return released
}

// List returns the unexpired holds of a slot as seatLabel -> holderID.
// Used to render "being selected" state to newly joining clients.
func (r *Registry) List(slotID uint64) map[string]uint64 {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64)
	for key, e := range r.holds {
		if key.SlotID == slotID && !r.expired(e, now) {
			out[key.SeatLabel] = e.holderID
		}
	}
	return out
}

// MissingOrForeign returns the seats of the request that holderID does not
// currently hold (no hold, expired hold, or held by someone else). The
// commit protocol uses this to reject commits for seats the client never
// actually held.
func (r *Registry) MissingOrForeign(slotID uint64, seatLabels []string, holderID uint64) []string {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	var failing []string
	for _, label := range seatLabels {
		e, ok := r.holds[SeatKey{SlotID: slotID, SeatLabel: label}]
		if !ok || r.expired(e, now) || e.holderID != holderID {
			failing = append(failing, label)
		}
	}
	return failing
}

// SweepExpired removes every hold older than the TTL and returns the
// reclaimed keys. A hold released concurrently simply does not appear.
func (r *Registry) SweepExpired() []SeatKey {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []SeatKey
	for key, e := range r.holds {
		if r.expired(e, now) {
			delete(r.holds, key)
			expired = append(expired, key)
		}
	}
	return expired
}

func (r *Registry) expired(e entry, now time.Time) bool {
	return now.Sub(e.createdAt) >= r.ttl
}
