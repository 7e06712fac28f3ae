// Package apikeys generates and hashes partner API key secrets
// (Bearer sk_(test|live)_<random>).
package apikeys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"

	"github.com/Haleralex/payflow/internal/domain/entities"
)

// randomSuffixBytes is the amount of entropy packed into the part of the
// secret after the environment prefix.
const randomSuffixBytes = 24

// Generate returns a new plaintext secret for the given environment, in the
// form "sk_test_..." or "sk_live_...". The caller must hash it
// with Hash before storing and must never persist the plaintext.
func Generate(env entities.ApiKeyEnvironment) (string, error) {
	buf := make([]byte, randomSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}
	suffix := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)

	prefix := "sk_test_"
	if env == entities.ApiKeyEnvironmentProduction {
		prefix = "sk_live_"
	}
	return prefix + suffix, nil
}

// Hash returns the SHA-256 hash of a secret, hex-encoded — the only form
// ever persisted.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
