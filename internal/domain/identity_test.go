package domain

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

// generateAddress produces a valid base58 ed25519 public key.
func generateAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return base58.Encode(pub)
}

func TestParseIdentity_Valid(t *testing.T) {
	addr := generateAddress(t)

	id, err := ParseIdentity(addr)
	if err != nil {
		t.Fatalf("ParseIdentity rejected valid address %s: %v", addr, err)
	}
	if string(id) != addr {
		t.Errorf("Identity mismatch: got %s, want %s", id, addr)
	}
}

func TestParseAssetID_Valid(t *testing.T) {
	addr := generateAddress(t)

	asset, err := ParseAssetID(addr)
	if err != nil {
		t.Fatalf("ParseAssetID rejected valid address %s: %v", addr, err)
	}
	if string(asset) != addr {
		t.Errorf("AssetID mismatch: got %s, want %s", asset, addr)
	}
}

func TestParseIdentity_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/="},
		{"too short", base58.Encode([]byte("short"))},
		{"too long", base58.Encode(make([]byte, 64))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIdentity(tc.in)
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("Expected ErrInvalidAddress for %q, got %v", tc.in, err)
			}
		})
	}
}

func TestParseIdentity_NotACurvePoint(t *testing.T) {
	// 32 bytes that do not decode to a point on the curve. Flipping the
	// low bytes of a valid key is not guaranteed to leave the curve, so
	// use a known non-canonical encoding instead: all 0xff.
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = 0xff
	}

	_, err := ParseIdentity(base58.Encode(raw))
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Expected ErrInvalidAddress, got %v", err)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	if StatusOpen.Terminal() {
		t.Error("OPEN must not be terminal")
	}
	if !StatusFilled.Terminal() {
		t.Error("FILLED must be terminal")
	}
	if !StatusCancelled.Terminal() {
		t.Error("CANCELLED must be terminal")
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{StatusOpen, StatusFilled, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if OrderStatus("PENDING").Valid() {
		t.Error("Unknown status should not be valid")
	}
	if OrderStatus(strings.ToLower(string(StatusOpen))).Valid() {
		t.Error("Status comparison must be case-sensitive")
	}
}
