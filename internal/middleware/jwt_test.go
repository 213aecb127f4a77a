package middleware

import (
	"testing"

	"github.com/karthikykr/MovieTicketBooking/internal/utils"
)

func TestParseAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	tok, err := utils.NewAccessToken(secret, 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	uid, role, err := ParseAccessToken(secret, tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 42 || role != "CUSTOMER" {
		t.Fatalf("got uid=%d role=%q", uid, role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("secret-a", 42, "CUSTOMER", 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, _, err := ParseAccessToken("secret-b", tok.Token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	if _, _, err := ParseAccessToken("secret", "not.a.jwt"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}
