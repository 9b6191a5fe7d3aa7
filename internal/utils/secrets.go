package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret generates a cryptographically secure random hex secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecret generates a 256-bit signing secret for local identity tokens
func GenerateJWTSecret() (string, error) {
	secret, err := GenerateSecret(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return secret, nil
}
