package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/hold"
	"github.com/karthikykr/MovieTicketBooking/internal/model"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// fakeSeatStore implements the SeatStore contract in memory: all-or-nothing
// commits with availability rechecked under the lock, exactly like the SQL
// implementation does with row locks.
type fakeSeatStore struct {
	mu       sync.Mutex
	seats    map[string]string // label -> status
	prices   map[string]uint32
	bookings []*model.Booking
	booked   map[string]uint64 // label -> booking id
	nextID   uint64
	failures int // transient failures to inject before succeeding
}

func newFakeSeatStore(labels ...string) *fakeSeatStore {
	s := &fakeSeatStore{
		seats:  make(map[string]string),
		prices: make(map[string]uint32),
		booked: make(map[string]uint64),
	}
	for _, l := range labels {
		s.seats[l] = model.SeatAvailable
		s.prices[l] = 1500
	}
	return s
}

func (s *fakeSeatStore) CommitSeats(_ context.Context, req repository.CommitRequest) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection reset")
	}
	var unavailable []string
	var total uint32
	for _, l := range req.SeatLabels {
		status, ok := s.seats[l]
		if !ok {
			return nil, repository.ErrSeatNotFound
		}
		if status != model.SeatAvailable {
			unavailable = append(unavailable, l)
		}
		total += s.prices[l]
	}
	if len(unavailable) > 0 {
		return nil, &repository.SeatUnavailableError{SeatLabels: unavailable}
	}
	s.nextID++
	b := &model.Booking{
		ID:         s.nextID,
		UserID:     req.UserID,
		SlotID:     req.SlotID,
		Reference:  fmt.Sprintf("BKTEST%04d", s.nextID),
		Status:     model.BookingConfirmed,
		TotalCents: total,
		FinalCents: total,
	}
	for _, l := range req.SeatLabels {
		s.seats[l] = model.SeatBooked
		s.booked[l] = b.ID
	}
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *fakeSeatStore) status(label string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[label]
}

// allowHolds reports every requested seat as validly held. Used to drive
// concurrent commits straight into the store, whose recheck is the
// authoritative double-booking guard.
type allowHolds struct{}

func (allowHolds) MissingOrForeign(uint64, []string, uint64) []string { return nil }
func (allowHolds) ReleaseSeats(_ uint64, labels []string, _ uint64) []string {
	return labels
}

type recordingRooms struct {
	mu     sync.Mutex
	booked []string
}

func (r *recordingRooms) SeatBooked(_ uint64, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, label)
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *recordingPublisher) BookingConfirmed(context.Context, *model.Booking, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
}

func TestCommitHappyPath(t *testing.T) {
	store := newFakeSeatStore("A1", "A2")
	registry := hold.NewRegistry(5 * time.Minute)
	rooms := &recordingRooms{}
	pub := &recordingPublisher{}
	svc := NewService(store, registry, rooms, pub, 0, 2, time.Millisecond)

	if err := registry.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("acquire A1: %v", err)
	}
	if err := registry.Acquire(1, "A2", 10); err != nil {
		t.Fatalf("acquire A2: %v", err)
	}

	b, err := svc.Commit(context.Background(), 1, []string{"A1", "A2", "A1"}, 10, 0)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if b.Status != model.BookingConfirmed || b.Reference == "" {
		t.Fatalf("booking %+v", b)
	}
	if b.TotalCents != 3000 {
		t.Fatalf("total = %d, want 3000", b.TotalCents)
	}
	if store.status("A1") != model.SeatBooked || store.status("A2") != model.SeatBooked {
		t.Fatal("seats not booked in store")
	}
	// Holds are consumed by the commit.
	if holds := registry.List(1); len(holds) != 0 {
		t.Fatalf("holds remain after commit: %v", holds)
	}
	if len(rooms.booked) != 2 {
		t.Fatalf("expected 2 seat_booked broadcasts, got %v", rooms.booked)
	}
	if pub.calls != 1 {
		t.Fatalf("expected 1 confirmed event, got %d", pub.calls)
	}
}

func TestCommitRequiresOwnedHolds(t *testing.T) {
	store := newFakeSeatStore("A1", "A2")
	registry := hold.NewRegistry(5 * time.Minute)
	svc := NewService(store, registry, &recordingRooms{}, nil, 0, 0, 0)

	// A1 is held by someone else, A2 not held at all.
	if err := registry.Acquire(1, "A1", 99); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	_, err := svc.Commit(context.Background(), 1, []string{"A1", "A2"}, 10, 0)
	su, ok := repository.IsSeatUnavailable(err)
	if !ok {
		t.Fatalf("expected SeatUnavailableError, got %v", err)
	}
	if len(su.SeatLabels) != 2 {
		t.Fatalf("failing seats %v", su.SeatLabels)
	}
	// The foreign hold must survive the rejected commit.
	if holds := registry.List(1); holds["A1"] != 99 {
		t.Fatalf("foreign hold lost: %v", holds)
	}
	if store.status("A1") != model.SeatAvailable {
		t.Fatal("store must be untouched by a rejected commit")
	}
}

func TestCommitAtomicAcrossSeats(t *testing.T) {
	store := newFakeSeatStore("A1", "A2")
	store.seats["A2"] = model.SeatBooked // lost before validation completes
	registry := hold.NewRegistry(5 * time.Minute)
	svc := NewService(store, registry, &recordingRooms{}, nil, 0, 0, 0)

	_ = registry.Acquire(1, "A1", 10)
	_ = registry.Acquire(1, "A2", 10)

	_, err := svc.Commit(context.Background(), 1, []string{"A1", "A2"}, 10, 0)
	su, ok := repository.IsSeatUnavailable(err)
	if !ok {
		t.Fatalf("expected SeatUnavailableError, got %v", err)
	}
	if len(su.SeatLabels) != 1 || su.SeatLabels[0] != "A2" {
		t.Fatalf("failing seats %v, want [A2]", su.SeatLabels)
	}
	// All-or-nothing: A1 must not be booked alone.
	if store.status("A1") != model.SeatAvailable {
		t.Fatal("A1 was committed despite A2 being unavailable")
	}
	// Only the failing seat's hold is released; A1 stays held for a retry.
	holds := registry.List(1)
	if holds["A1"] != 10 {
		t.Fatalf("A1 hold must survive, got %v", holds)
	}
	if _, stillHeld := holds["A2"]; stillHeld {
		t.Fatalf("A2 hold must be released, got %v", holds)
	}
}

func TestCommitTransientRetrySucceeds(t *testing.T) {
	store := newFakeSeatStore("A1")
	store.failures = 2
	registry := hold.NewRegistry(5 * time.Minute)
	svc := NewService(store, registry, &recordingRooms{}, nil, 0, 2, time.Millisecond)

	_ = registry.Acquire(1, "A1", 10)
	b, err := svc.Commit(context.Background(), 1, []string{"A1"}, 10, 0)
	if err != nil {
		t.Fatalf("commit should succeed after retries: %v", err)
	}
	if b.Status != model.BookingConfirmed {
		t.Fatalf("booking %+v", b)
	}
}

func TestCommitTransientExhaustionKeepsHolds(t *testing.T) {
	store := newFakeSeatStore("A1")
	store.failures = 10
	registry := hold.NewRegistry(5 * time.Minute)
	svc := NewService(store, registry, &recordingRooms{}, nil, 0, 1, time.Millisecond)

	_ = registry.Acquire(1, "A1", 10)
	_, err := svc.Commit(context.Background(), 1, []string{"A1"}, 10, 0)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	// Holds survive so the identical request can be retried.
	if holds := registry.List(1); holds["A1"] != 10 {
		t.Fatalf("hold lost after transient failure: %v", holds)
	}
}

func TestNoDoubleBookingUnderConcurrentCommits(t *testing.T) {
	// Seats A1..A5; 20 holders each racing for an overlapping window of 2
	// seats. The hold layer is bypassed (allowHolds) so the commits collide
	// inside the store, whose recheck must leave every seat in exactly one
	// confirmed booking.
	labels := []string{"A1", "A2", "A3", "A4", "A5"}
	store := newFakeSeatStore(labels...)
	svc := NewService(store, allowHolds{}, &recordingRooms{}, nil, 0, 0, 0)

	const holders = 20
	var wg sync.WaitGroup
	var confirmed, unavailable sync.Map
	for h := 0; h < holders; h++ {
		wg.Add(1)
		go func(holderID uint64) {
			defer wg.Done()
			want := []string{labels[holderID%5], labels[(holderID+1)%5]}
			b, err := svc.Commit(context.Background(), 1, want, holderID, 0)
			if err == nil {
				confirmed.Store(holderID, b)
				return
			}
			if _, ok := repository.IsSeatUnavailable(err); !ok {
				t.Errorf("holder %d: unexpected error %v", holderID, err)
				return
			}
			unavailable.Store(holderID, true)
		}(uint64(h))
	}
	wg.Wait()

	// Every booked seat belongs to exactly one confirmed booking.
	store.mu.Lock()
	defer store.mu.Unlock()
	seatOwner := make(map[string]uint64)
	for _, b := range store.bookings {
		for label, id := range store.booked {
			if id == b.ID {
				if prev, taken := seatOwner[label]; taken && prev != b.ID {
					t.Fatalf("seat %s in bookings %d and %d", label, prev, b.ID)
				}
				seatOwner[label] = b.ID
			}
		}
	}
	var winners int
	confirmed.Range(func(_, _ interface{}) bool { winners++; return true })
	var losers int
	unavailable.Range(func(_, _ interface{}) bool { losers++; return true })
	if winners+losers != holders {
		t.Fatalf("winners(%d)+losers(%d) != %d", winners, losers, holders)
	}
	if winners == 0 {
		t.Fatal("expected at least one confirmed booking")
	}
	if winners != len(store.bookings) {
		t.Fatalf("confirmed callers %d != stored bookings %d", winners, len(store.bookings))
	}
}

func TestSingleSeatRaceHasExactlyOneWinner(t *testing.T) {
	// Two holders race hold-then-commit on the same seat. Exactly one ends
	// Confirmed; the loser sees HoldConflict or SeatUnavailable depending
	// on timing. The assertion is one winner, not which one.
	store := newFakeSeatStore("A1")
	registry := hold.NewRegistry(5 * time.Minute)
	svc := NewService(store, registry, &recordingRooms{}, nil, 0, 0, 0)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int, holderID uint64) {
			defer wg.Done()
			if err := registry.Acquire(1, "A1", holderID); err != nil {
				results[idx] = err
				return
			}
			_, err := svc.Commit(context.Background(), 1, []string{"A1"}, holderID, 0)
			results[idx] = err
		}(i, uint64(i+1))
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, hold.ErrHoldConflict):
		default:
			if _, ok := repository.IsSeatUnavailable(err); !ok {
				t.Fatalf("unexpected loser error: %v", err)
			}
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d (results %v)", wins, results)
	}
	if store.status("A1") != model.SeatBooked {
		t.Fatal("seat must end booked")
	}
}
