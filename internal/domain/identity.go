package domain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned when an address fails base58 or
// curve-point validation.
var ErrInvalidAddress = errors.New("invalid address")

// addressLen is the decoded length of an ed25519 public key.
const addressLen = 32

// ParseIdentity validates and returns an account identity.
// Addresses are base58-encoded 32-byte ed25519 public keys.
func ParseIdentity(s string) (Identity, error) {
	if err := validateAddress(s); err != nil {
		return "", err
	}
	return Identity(s), nil
}

// ParseAssetID validates and returns an asset identifier.
// Asset ids use the same encoding as identities.
func ParseAssetID(s string) (AssetID, error) {
	if err := validateAddress(s); err != nil {
		return "", err
	}
	return AssetID(s), nil
}

// validateAddress checks that s decodes to a valid ed25519 curve point.
func validateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != addressLen {
		return fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidAddress, len(decoded), addressLen)
	}

	// Reject byte strings that are not points on the curve.
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("%w: not a curve point", ErrInvalidAddress)
	}
	return nil
}
