package cipher

import (
	"fmt"

	"golang.org/x/crypto/curve25519"

	"keymesh/crypto"
	"keymesh/domain"
)

const infoWrap = "keymesh/keywrap/v1"

// WrapKey encrypts a short content key for one recipient using the direct
// construction: ephemeral X25519 agreement, HKDF, AEAD. Only the named
// recipient can unwrap. The sender's public key is recorded for provenance.
func WrapKey(contentKey []byte, recipient domain.PublicKey, sender domain.PrivateKey) (domain.WrappedKey, error) {
	if len(contentKey) == 0 {
		return domain.WrappedKey{}, fmt.Errorf("empty content key: %w", domain.ErrValidation)
	}
	rxPub, err := crypto.AgreementPublic(recipient)
	if err != nil {
		return domain.WrappedKey{}, err
	}

	ephPriv, ephPub, err := crypto.GenerateAgreementKeypair()
	if err != nil {
		return domain.WrappedKey{}, err
	}
	defer crypto.Wipe(ephPriv[:])

	raw, err := curve25519.X25519(ephPriv[:], rxPub[:])
	if err != nil {
		return domain.WrappedKey{}, fmt.Errorf("x25519 agreement rejected public key: %w", domain.ErrValidation)
	}
	kek, err := crypto.DeriveKey(raw, infoWrap)
	crypto.Wipe(raw)
	if err != nil {
		return domain.WrappedKey{}, err
	}
	defer crypto.Wipe(kek)

	ct, nonce, _, err := crypto.Seal(contentKey, kek, false)
	if err != nil {
		return domain.WrappedKey{}, err
	}
	return domain.WrappedKey{
		Ciphertext:         ct,
		Nonce:              nonce,
		EphemeralPublicKey: ephPub[:],
		SenderPublicKey:    sender.Public(),
	}, nil
}

// UnwrapKey recovers a wrapped content key. Non-holders fail at the AEAD
// gate with domain.ErrAuthentication. The caller owns the returned key and
// is responsible for wiping it.
func UnwrapKey(w domain.WrappedKey, holder domain.PrivateKey) ([]byte, error) {
	if len(w.EphemeralPublicKey) != 32 {
		return nil, fmt.Errorf("ephemeral public key must be 32 bytes: %w", domain.ErrValidation)
	}

	xpriv := crypto.AgreementPrivate(holder)
	defer crypto.Wipe(xpriv[:])

	raw, err := curve25519.X25519(xpriv[:], w.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("x25519 agreement rejected ephemeral key: %w", domain.ErrValidation)
	}
	kek, err := crypto.DeriveKey(raw, infoWrap)
	crypto.Wipe(raw)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(kek)

	return crypto.Open(w.Ciphertext, kek, w.Nonce, false)
}
