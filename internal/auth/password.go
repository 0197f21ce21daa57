// Package auth implements password hashing and verification.
//
// Current hashes are bcrypt. Rows imported from the legacy system carry an
// unsalted SHA-256 digest in base64; those still verify, but VerifyPassword
// reports them so the caller can re-hash to bcrypt on the next successful
// login.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext password against a stored hash.
// needsRehash is true when the password matched a legacy digest and the
// stored hash should be upgraded to bcrypt.
func VerifyPassword(stored, password string) (ok bool, needsRehash bool) {
	if isLegacyHash(stored) {
		digest := legacyHash(password)
		match := subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
		return match, match
	}

	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	return err == nil, false
}

// isLegacyHash reports whether the stored value is a legacy unsalted
// SHA-256 digest rather than a bcrypt hash. Bcrypt hashes always begin
// with a "$2" version prefix.
func isLegacyHash(stored string) bool {
	return !strings.HasPrefix(stored, "$2")
}

// legacyHash reproduces the legacy scheme: base64 of the SHA-256 digest
// over the UTF-8 password bytes.
func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}
