// Package repository defines error values reused across repositories.
// These sentinels let handlers distinguish failure scenarios: not-found
// errors map to 404, ErrForbidden to 403, ErrConflict to 409. The typed
// SeatUnavailableError names the exact seats that lost the race so a client
// can tell "nothing you wanted is available" from "some seats were taken"
// and retry with the remainder.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSlotNotFound indicates the referenced showtime slot does not exist.
var ErrSlotNotFound = errors.New("showtime slot not found")

// ErrSeatNotFound indicates a referenced seat label does not exist in the slot.
var ErrSeatNotFound = errors.New("seat not found")

// ErrMovieNotFound indicates a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrTheaterNotFound indicates a theater was not located in the DB.
var ErrTheaterNotFound = errors.New("theater not found")

// ErrBookingNotFound indicates a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed due to
// conflicting state, such as cancelling a booking for a show that has
// already started.
var ErrConflict = errors.New("conflict")

// SeatUnavailableError reports the seats of a commit request that are no
// longer available. It is a definitive outcome: the client must pick
// different seats rather than retry the identical request.
type SeatUnavailableError struct {
	SeatLabels []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatLabels, ","))
}

// IsSeatUnavailable unwraps err into a SeatUnavailableError if possible.
func IsSeatUnavailable(err error) (*SeatUnavailableError, bool) {
	var su *SeatUnavailableError
	if errors.As(err, &su) {
		return su, true
	}
	return nil, false
}
