package cipher

import (
	"fmt"
	"time"

	"keymesh/crypto"
	"keymesh/domain"
)

const infoPersonal = "keymesh/personal/v1"

// Options tune an encrypt call.
type Options struct {
	// Compress DEFLATEs the plaintext before sealing when it helps.
	Compress bool
}

// EncryptPersonal encrypts plaintext so that only the owner of priv can ever
// read it. The symmetric key is derived deterministically from the owner's
// own key material (self-agreement), so no metadata beyond the nonce is
// needed to decrypt.
func EncryptPersonal(plaintext []byte, priv domain.PrivateKey, opts Options) (domain.EncryptionResult, error) {
	owner := priv.Public()
	key, err := crypto.SharedSecret(priv, owner, infoPersonal)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	defer crypto.Wipe(key)

	ct, nonce, compressed, err := crypto.Seal(plaintext, key, opts.Compress)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	return domain.EncryptionResult{
		EncryptedData: ct,
		Method:        domain.MethodPersonal,
		Metadata: domain.Metadata{
			Nonce:           nonce,
			Timestamp:       time.Now().Unix(),
			Version:         domain.FormatVersion,
			Compressed:      compressed,
			SenderPublicKey: &owner,
		},
	}, nil
}

// DecryptPersonal reverses EncryptPersonal. Any private key other than the
// one that encrypted yields domain.ErrAuthentication at the AEAD gate.
func DecryptPersonal(res domain.EncryptionResult, priv domain.PrivateKey) ([]byte, error) {
	if res.Method != domain.MethodPersonal {
		return nil, fmt.Errorf("result method is %s, want %s: %w", res.Method, domain.MethodPersonal, domain.ErrValidation)
	}
	key, err := crypto.SharedSecret(priv, priv.Public(), infoPersonal)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	return crypto.Open(res.EncryptedData, key, res.Metadata.Nonce, res.Metadata.Compressed)
}
