package crypto

import (
	"crypto/ed25519"

	"keymesh/domain"
)

// Sign signs data with the Ed25519 private key.
func Sign(data []byte, priv domain.PrivateKey) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv.Slice()), data)
}

// Verify reports whether sig is a valid signature over data by pub.
// A wrong signer, modified data or a replayed signature all return false;
// mismatches never raise an error.
func Verify(data, sig []byte, pub domain.PublicKey) bool {
	return ed25519.Verify(ed25519.PublicKey(pub.Slice()), data, sig)
}
