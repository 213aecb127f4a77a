// Package booking implements the commit protocol that converts held seats
// into a durable booking. A commit attempt moves through
// Requested -> Validating -> Committing -> Confirmed|Rejected; validation
// requires an unexpired hold owned by the caller for every requested seat,
// and the durable flip is delegated to the seat map store's atomic
// CommitSeats, which re-verifies availability under row locks.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/model"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// SeatStore is the durable seat map: the only writer of seat status.
type SeatStore interface {
	CommitSeats(ctx context.Context, req repository.CommitRequest) (*model.Booking, error)
}

// Holds is the slice of the hold registry the protocol needs.
type Holds interface {
	MissingOrForeign(slotID uint64, seatLabels []string, holderID uint64) []string
	ReleaseSeats(slotID uint64, seatLabels []string, holderID uint64) []string
}

// Broadcaster notifies a slot room that seats are now permanently booked.
type Broadcaster interface {
	SeatBooked(slotID uint64, seatLabel string)
}

// Publisher signals downstream collaborators (payment capture,
// notifications) after a confirmed booking. Implementations must not block
// the commit path; failures are logged, never surfaced to the client.
type Publisher interface {
	BookingConfirmed(ctx context.Context, b *model.Booking, seatLabels []string)
}

// Service orchestrates commit attempts. All fields are required except
// publisher, which may be nil when no broker is configured.
type Service struct {
	store      SeatStore
	holds      Holds
	rooms      Broadcaster
	publisher  Publisher
	taxRateBps int
	retries    int
	backoff    time.Duration
}

// NewService wires a commit Service.
func NewService(store SeatStore, holds Holds, rooms Broadcaster, publisher Publisher, taxRateBps, retries int, backoff time.Duration) *Service {
	if store == nil || holds == nil || rooms == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		store:      store,
		holds:      holds,
		rooms:      rooms,
		publisher:  publisher,
		taxRateBps: taxRateBps,
		retries:    retries,
		backoff:    backoff,
	}
}

// Commit runs one commit attempt for userID over the requested seats.
//
// Outcomes:
//   - (*model.Booking, nil): Confirmed. Holds on the committed seats are
//     released, the room is told each seat is booked, and the confirmed
//     event is published fire-and-forget.
//   - *repository.SeatUnavailableError: Rejected; the named seats were
//     never held by the caller or lost the race at commit time. The
//     caller's holds on exactly those seats are released so a retry with
//     the surviving seats remains possible.
//   - ErrTransient: the durable step kept failing. Holds are left in
//     place so the client can retry the identical request within the
//     hold TTL grace period.
//   - repository.ErrSlotNotFound / ErrSeatNotFound / ErrNoSeats: request
//     errors, not retried.
func (s *Service) Commit(ctx context.Context, slotID uint64, seatLabels []string, userID uint64, discountCents uint32) (*model.Booking, error) {
	seats := dedupe(seatLabels)
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}

	// Validating: the caller must actually hold every requested seat.
	// This guards against committing seats the client never selected,
	// which would bypass the hold flow other viewers rely on.
	if failing := s.holds.MissingOrForeign(slotID, seats, userID); len(failing) > 0 {
		s.holds.ReleaseSeats(slotID, failing, userID)
		return nil, &repository.SeatUnavailableError{SeatLabels: failing}
	}

	// Committing: delegate the atomic flip, retrying transient failures a
	// bounded number of times before surfacing them.
	var b *model.Booking
	var err error
	for attempt := 0; ; attempt++ {
		b, err = s.store.CommitSeats(ctx, repository.CommitRequest{
			SlotID:        slotID,
			SeatLabels:    seats,
			UserID:        userID,
			TaxRateBps:    s.taxRateBps,
			DiscountCents: discountCents,
		})
		if err == nil {
			break
		}
		if su, ok := repository.IsSeatUnavailable(err); ok {
			// Definitive loss: the named seats went to someone else between
			// hold and commit. Free only those so the client can re-select.
			s.holds.ReleaseSeats(slotID, su.SeatLabels, userID)
			return nil, err
		}
		if errors.Is(err, repository.ErrSlotNotFound) || errors.Is(err, repository.ErrSeatNotFound) {
			return nil, err
		}
		if attempt >= s.retries || ctx.Err() != nil {
			log.Printf("booking: commit for slot %d gave up after %d attempt(s): %v", slotID, attempt+1, err)
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		log.Printf("booking: transient commit failure for slot %d (attempt %d): %v", slotID, attempt+1, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
		case <-time.After(s.backoff):
		}
	}

	// Confirmed: the durable status now signals "booked" to everyone, so
	// the transient holds are no longer needed.
	s.holds.ReleaseSeats(slotID, seats, userID)
	for _, label := range seats {
		s.rooms.SeatBooked(slotID, label)
	}
	if s.publisher != nil {
		s.publisher.BookingConfirmed(ctx, b, seats)
	}
	return b, nil
}

func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
