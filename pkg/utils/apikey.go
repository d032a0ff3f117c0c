package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeyRandomBytes is the entropy of the secret part of a key.
	APIKeyRandomBytes = 32
	// APIKeyDisplayLen is how many leading characters are kept for display.
	APIKeyDisplayLen = 16
)

// GenerateAPIKey returns a key of the form <prefix>_<deviceID>_<base64url secret>
// with its SHA-256 hex digest and display prefix. The plaintext is shown once.
func GenerateAPIKey(prefix, deviceID string) (plaintext, hash, display string, err error) {
	random := make([]byte, APIKeyRandomBytes)
	if _, err := rand.Read(random); err != nil {
		return "", "", "", fmt.Errorf("failed to generate api key: %w", err)
	}

	plaintext = fmt.Sprintf("%s_%s_%s", prefix, deviceID, base64.RawURLEncoding.EncodeToString(random))
	display = plaintext
	if len(display) > APIKeyDisplayLen {
		display = display[:APIKeyDisplayLen]
	}

	return plaintext, HashAPIKey(plaintext), display, nil
}

// HashAPIKey returns the hex SHA-256 of a plaintext key.
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// APIKeyMatches compares a plaintext key against a stored hash in constant time.
func APIKeyMatches(plaintext, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashAPIKey(plaintext)), []byte(storedHash)) == 1
}
