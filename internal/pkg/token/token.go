package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewDeviceToken generates a cryptographically random 64-character hex installation token.
func NewDeviceToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate device token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
