package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// APIKeyLength is the length of a Guild Wars 2 API key.
const APIKeyLength = 72

// NormalizeKey trims surrounding whitespace from a user supplied key.
func NormalizeKey(apiKey string) string {
	return strings.TrimSpace(apiKey)
}

// KeyHash identifies an API key in storage without keeping the key itself.
func KeyHash(apiKey string) string {
	sum := sha256.Sum256([]byte(NormalizeKey(apiKey)))
	return hex.EncodeToString(sum[:])
}
