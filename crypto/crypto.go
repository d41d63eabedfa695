// Package crypto holds the hashing helpers the guard layer relies on:
// SHA-256 identity digests with constant-time comparison, and bcrypt hashing
// for stored pairing and webhook secrets.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

// hexDigestRe matches a full lowercase SHA-256 hex digest.
var hexDigestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Sha256Hex returns the lowercase hex SHA-256 digest of s.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ValidSha256Hex reports whether s is exactly 64 lowercase hex characters.
func ValidSha256Hex(s string) bool {
	return hexDigestRe.MatchString(s)
}

// ConstantTimeEqual compares two strings in time independent of where the
// first mismatching byte occurs. Used for secret and digest comparison where
// a short-circuiting == would open a timing side channel.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HashSecret hashes a pairing or webhook secret using bcrypt.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("crypto: hashing secret: %w", err)
	}
	return string(hash), nil
}

// CompareSecret compares the hashed secret with the provided secret.
func CompareSecret(hashedSecret, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
	return err == nil
}
