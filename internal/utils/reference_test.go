package utils

import (
	"strings"
	"testing"
)

func TestNewBookingReferenceShape(t *testing.T) {
	ref := NewBookingReference()
	if !strings.HasPrefix(ref, "BK") {
		t.Fatalf("reference %q does not start with BK", ref)
	}
	// "BK" + 13 digit millis + 5 char suffix
	if len(ref) < 15 {
		t.Fatalf("reference %q too short", ref)
	}
	for _, c := range ref[2:] {
		if !strings.ContainsRune(referenceAlphabet, c) {
			t.Fatalf("reference %q contains unexpected character %q", ref, c)
		}
	}
}

func TestNewBookingReferenceDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref := NewBookingReference()
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference %q after %d generations", ref, i)
		}
		seen[ref] = struct{}{}
	}
}
