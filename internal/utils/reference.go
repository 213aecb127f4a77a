package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBookingReference returns a booking code of the form
// "BK<unix-millis><5 random base36 chars>". The millisecond prefix keeps
// codes roughly sortable by creation time; the random suffix disambiguates
// bookings created in the same millisecond. Uniqueness is ultimately
// enforced by the unique index on bookings.reference.
func NewBookingReference() string {
	var b strings.Builder
	b.WriteString("BK")
	fmt.Fprintf(&b, "%d", time.Now().UTC().UnixMilli())
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to
		// the nanosecond clock rather than returning an error nobody can act on.
		fmt.Fprintf(&b, "%05d", time.Now().UnixNano()%100000)
		return b.String()
	}
	for _, c := range buf {
		b.WriteByte(referenceAlphabet[int(c)%len(referenceAlphabet)])
	}
	return b.String()
}
