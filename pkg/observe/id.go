package observe

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID generates a 16-character hex identifier from 8 random bytes.
func NewID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// The OS crypto source failing is not a recoverable state.
		panic(fmt.Errorf("crypto/rand failed: %w", err))
	}
	return hex.EncodeToString(b)
}
