package domain

import (
	"encoding/hex"
	"strings"
)

// ─── Identity ───────────────────────────────────────────────────────────────
// Identities are 20-byte account addresses written as 0x-prefixed hex.
// The all-zero address is reserved and never a valid party.

// IdentityHexLen is the number of hex digits after the 0x prefix.
const IdentityHexLen = 40

// Identity is a canonical (lower-case) account address.
type Identity string

// ZeroIdentity is the reserved empty address.
const ZeroIdentity Identity = "0x0000000000000000000000000000000000000000"

// ParseIdentity validates and canonicalises an address.
// Malformed or all-zero input returns ErrInvalidRecipient.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2+IdentityHexLen || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return "", ErrInvalidRecipient
	}
	digits := strings.ToLower(s[2:])
	if _, err := hex.DecodeString(digits); err != nil {
		return "", ErrInvalidRecipient
	}
	id := Identity("0x" + digits)
	if id == ZeroIdentity {
		return "", ErrInvalidRecipient
	}
	return id, nil
}

// MustIdentity is ParseIdentity for literals known to be valid.
func MustIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic("domain: invalid identity literal " + s)
	}
	return id
}

// Valid reports whether the identity is well-formed and non-zero.
func (i Identity) Valid() bool {
	parsed, err := ParseIdentity(string(i))
	return err == nil && parsed == i
}

// String returns the address text.
func (i Identity) String() string { return string(i) }

// Short returns an abbreviated form for logs (0x1234…abcd).
func (i Identity) Short() string {
	s := string(i)
	if len(s) < 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}
