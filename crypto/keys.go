package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"golang.org/x/crypto/curve25519"

	"keymesh/domain"
)

// GenerateKeypair returns a fresh Ed25519 key pair. The same pair serves
// both signing and (after conversion) X25519 key agreement.
func GenerateKeypair() (domain.Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return domain.Keypair{}, err
	}
	var kp domain.Keypair
	copy(kp.Pub[:], pub)
	copy(kp.Priv[:], priv)
	return kp, nil
}

// GenerateAgreementKeypair returns a fresh X25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateAgreementKeypair() (priv, pub [32]byte, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pb, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(pub[:], pb)
	return
}

func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
