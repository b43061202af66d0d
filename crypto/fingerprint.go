package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short human-readable identifier for key material:
// the first 10 bytes of its SHA-256 digest, hex encoded. Used in error
// messages and CLI output where a full base64 key would be noise.
func Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:10])
}
