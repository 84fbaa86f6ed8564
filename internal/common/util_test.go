package common

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, _ := MakeRandHexString(PublicLinkKeySize)
	b, _ := MakeRandHexString(PublicLinkKeySize)
	if a == b {
		t.Fatalf("two random keys collided: %q", a)
	}
}

func TestPublicLink(t *testing.T) {
	key, err := MakeRandHexString(PublicLinkKeySize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	link := PublicLink(key)
	if !strings.HasPrefix(link, "/api/files/public/") {
		t.Fatalf("unexpected prefix: %q", link)
	}
	if got := strings.TrimPrefix(link, PublicLinkPrefix); len(got) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(got))
	}
}
