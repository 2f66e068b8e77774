package repository

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Digest names accepted in credentials.digest.
const (
	DigestSHA256  = "sha256"
	DigestSHA3256 = "sha3-256"
)

// Digest is a deterministic one-way password transform with hex output.
type Digest func(password string) string

// NewDigest returns the digest registered under name.
func NewDigest(name string) (Digest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DigestSHA256:
		return sha256Hex, nil
	case DigestSHA3256:
		return sha3Hex, nil
	default:
		return nil, fmt.Errorf("unknown digest %q", name)
	}
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func sha3Hex(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// digestsEqual compares two hex digests in constant time.
func digestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(a)), []byte(strings.ToLower(b))) == 1
}
