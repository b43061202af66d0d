package crypto

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"keymesh/domain"
)

// AgreementPublic converts an Ed25519 public key to its X25519 form via the
// birational map from the Edwards point to the Montgomery u-coordinate.
func AgreementPublic(pub domain.PublicKey) ([32]byte, error) {
	var out [32]byte
	p, err := new(edwards25519.Point).SetBytes(pub.Slice())
	if err != nil {
		return out, fmt.Errorf("public key is not a valid Ed25519 point: %w", domain.ErrValidation)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// AgreementPrivate converts an Ed25519 private key to its X25519 form: the
// SHA-512 digest of the seed, clamped per RFC 7748. This is the scalar the
// Ed25519 public key is already a commitment to, so agreement and signing
// share one identity.
func AgreementPrivate(priv domain.PrivateKey) [32]byte {
	h := sha512.Sum512(priv.Seed())
	var out [32]byte
	copy(out[:], h[:32])
	clamp(&out)
	return out
}
