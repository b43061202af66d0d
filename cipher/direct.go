package cipher

import (
	"fmt"
	"time"

	"golang.org/x/crypto/curve25519"

	"keymesh/crypto"
	"keymesh/domain"
)

const infoDirect = "keymesh/direct/v1"

// EncryptDirect encrypts plaintext for exactly one recipient.
//
// A fresh X25519 pair is generated per call; the symmetric key is agreed
// between the ephemeral private key and the recipient's public key, and the
// ephemeral private key is wiped before returning. The sender's public key
// rides along for provenance only, so forward secrecy holds even if the
// sender's long-term key later leaks.
func EncryptDirect(plaintext []byte, recipient domain.PublicKey, sender domain.PrivateKey, opts Options) (domain.EncryptionResult, error) {
	rxPub, err := crypto.AgreementPublic(recipient)
	if err != nil {
		return domain.EncryptionResult{}, err
	}

	ephPriv, ephPub, err := crypto.GenerateAgreementKeypair()
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	defer crypto.Wipe(ephPriv[:])

	raw, err := curve25519.X25519(ephPriv[:], rxPub[:])
	if err != nil {
		return domain.EncryptionResult{}, fmt.Errorf("x25519 agreement rejected public key: %w", domain.ErrValidation)
	}
	key, err := crypto.DeriveKey(raw, infoDirect)
	crypto.Wipe(raw)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	defer crypto.Wipe(key)

	ct, nonce, compressed, err := crypto.Seal(plaintext, key, opts.Compress)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	senderPub := sender.Public()
	return domain.EncryptionResult{
		EncryptedData: ct,
		Method:        domain.MethodDirect,
		Metadata: domain.Metadata{
			Nonce:              nonce,
			Timestamp:          time.Now().Unix(),
			Version:            domain.FormatVersion,
			Compressed:         compressed,
			SenderPublicKey:    &senderPub,
			RecipientPublicKey: &recipient,
			EphemeralPublicKey: ephPub[:],
		},
	}, nil
}

// DecryptDirect recovers the plaintext using the recipient's private key and
// the ephemeral public key embedded in the envelope.
func DecryptDirect(res domain.EncryptionResult, recipient domain.PrivateKey) ([]byte, error) {
	if res.Method != domain.MethodDirect {
		return nil, fmt.Errorf("result method is %s, want %s: %w", res.Method, domain.MethodDirect, domain.ErrValidation)
	}
	if len(res.Metadata.EphemeralPublicKey) != 32 {
		return nil, fmt.Errorf("ephemeral public key must be 32 bytes: %w", domain.ErrValidation)
	}

	xpriv := crypto.AgreementPrivate(recipient)
	defer crypto.Wipe(xpriv[:])

	raw, err := curve25519.X25519(xpriv[:], res.Metadata.EphemeralPublicKey)
	if err != nil {
		return nil, fmt.Errorf("x25519 agreement rejected ephemeral key: %w", domain.ErrValidation)
	}
	key, err := crypto.DeriveKey(raw, infoDirect)
	crypto.Wipe(raw)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	return crypto.Open(res.EncryptedData, key, res.Metadata.Nonce, res.Metadata.Compressed)
}
