package internal

import (
	"strings"

	"github.com/google/uuid"
)

// NewToken returns a random (version 4) UUID in canonical lowercase
// 8-4-4-4-12 form. The randomness comes from crypto/rand.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ParseToken reports whether s parses as a UUID. Canonical, braced,
// "urn:uuid:" and bare 32-hex forms are accepted; surrounding whitespace is
// ignored.
func ParseToken(s string) error {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err
}

// IsBlank reports whether s is empty or contains only white space.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
