package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"keymesh/domain"
)

// KeySize is the length of every derived symmetric key.
const KeySize = 32

// SharedSecret derives a fixed-length symmetric key from a local private key
// and a remote public key: X25519 over the converted keys, then HKDF-SHA256
// bound to a construction-specific info string.
//
// The derivation commutes: SharedSecret(aPriv, bPub, info) equals
// SharedSecret(bPriv, aPub, info).
func SharedSecret(localPriv domain.PrivateKey, remotePub domain.PublicKey, info string) ([]byte, error) {
	xpriv := AgreementPrivate(localPriv)
	defer Wipe(xpriv[:])

	xpub, err := AgreementPublic(remotePub)
	if err != nil {
		return nil, err
	}
	return agree(xpriv, xpub, info)
}

// agree runs X25519 over raw Montgomery keys and expands the result.
func agree(xpriv, xpub [32]byte, info string) ([]byte, error) {
	raw, err := curve25519.X25519(xpriv[:], xpub[:])
	if err != nil {
		return nil, fmt.Errorf("x25519 agreement rejected public key: %w", domain.ErrValidation)
	}
	defer Wipe(raw)
	return DeriveKey(raw, info)
}

// DeriveKey expands input key material into a KeySize symmetric key with
// HKDF-SHA256. The info string domain-separates the ciphers.
func DeriveKey(ikm []byte, info string) ([]byte, error) {
	if len(ikm) == 0 {
		return nil, fmt.Errorf("empty input key material: %w", domain.ErrValidation)
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(info)), key); err != nil {
		return nil, err
	}
	return key, nil
}
