package booking

import "errors"

// ErrNoSeats is returned for a commit request without any seat labels.
var ErrNoSeats = errors.New("no seats requested")

// ErrTransient wraps infrastructure failures of the durable commit step.
// The identical request is safe to retry: CommitSeats rechecks availability
// under row locks, so a retry after an actually-successful first attempt
// fails with SeatUnavailable instead of double-booking. Handlers surface it
// as "try again unchanged", distinct from SeatUnavailable's "change your
// request".
var ErrTransient = errors.New("transient storage error")
