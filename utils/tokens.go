package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewTrackingCode returns a URL-safe random code of the given length. The
// code goes straight into redirect URLs, so only base64url characters are
// used.
func NewTrackingCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := base64.RawURLEncoding.EncodeToString(b)
	return code[:length], nil
}
