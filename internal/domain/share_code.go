package domain

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// ShareCodeLength is the length of the human-typeable share token.
const ShareCodeLength = 8

// NewShareCode returns a random 8-character, upper-cased, URL-safe share
// code. Codes are presented to users as short typeable tokens; uniqueness is
// enforced by the repository at write time, not here.
func NewShareCode() string {
	// 6 random bytes encode to exactly 8 base64url characters.
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return strings.ToUpper(base64.RawURLEncoding.EncodeToString(buf))
}

// NormalizeShareCode maps user input onto the stored code format so lookups
// are case-insensitive.
func NormalizeShareCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
