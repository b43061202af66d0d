package keymesh

import (
	"fmt"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
	"keymesh/services/group"
	"keymesh/services/sharedkey"
)

// Manager is the single entry point dispatching encryption and decryption by
// declared method. It is stateless and safe for concurrent use.
type Manager struct {
	defaults cipher.Options
}

// Option configures a Manager.
type Option func(*Manager)

// WithCompression makes every encrypt call attempt compression unless the
// request overrides it.
func WithCompression() Option {
	return func(m *Manager) { m.defaults.Compress = true }
}

// New returns a Manager.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, o := range opts {
		o(m)
	}
	return m
}

// EncryptRequest names the method and the material it needs. Exactly the
// fields of the chosen variant are consulted.
type EncryptRequest struct {
	Method    domain.Method
	Plaintext []byte

	// DIRECT.
	Recipient *domain.PublicKey

	// SIGNATURE_GROUP.
	Group *domain.SignatureGroup

	// SHARED_KEY.
	SharedKey *domain.SharedKey

	// Options override the Manager defaults when set.
	Options *cipher.Options
}

// DecryptRequest pairs an envelope with the structure its method requires.
type DecryptRequest struct {
	Result domain.EncryptionResult

	// SIGNATURE_GROUP.
	Group *domain.SignatureGroup

	// SHARED_KEY.
	SharedKey *domain.SharedKey
}

// Encrypt dispatches by req.Method using priv as the caller's key.
func (m *Manager) Encrypt(req EncryptRequest, priv domain.PrivateKey) (domain.EncryptionResult, error) {
	opts := m.defaults
	if req.Options != nil {
		opts = *req.Options
	}

	switch req.Method {
	case domain.MethodPersonal:
		return cipher.EncryptPersonal(req.Plaintext, priv, opts)
	case domain.MethodDirect:
		if req.Recipient == nil {
			return domain.EncryptionResult{}, fmt.Errorf("direct encryption needs a recipient: %w", domain.ErrValidation)
		}
		return cipher.EncryptDirect(req.Plaintext, *req.Recipient, priv, opts)
	case domain.MethodSignatureGroup:
		if req.Group == nil {
			return domain.EncryptionResult{}, fmt.Errorf("group encryption needs the group: %w", domain.ErrValidation)
		}
		return group.Encrypt(req.Plaintext, *req.Group, priv, opts)
	case domain.MethodSharedKey:
		if req.SharedKey == nil {
			return domain.EncryptionResult{}, fmt.Errorf("shared-key encryption needs the shared key: %w", domain.ErrValidation)
		}
		return sharedkey.Encrypt(req.Plaintext, *req.SharedKey, priv, opts)
	default:
		return domain.EncryptionResult{}, fmt.Errorf("unknown encryption method %q: %w", req.Method, domain.ErrValidation)
	}
}

// Decrypt dispatches by the envelope's method using priv as the caller's key.
func (m *Manager) Decrypt(req DecryptRequest, priv domain.PrivateKey) ([]byte, error) {
	switch req.Result.Method {
	case domain.MethodPersonal:
		return cipher.DecryptPersonal(req.Result, priv)
	case domain.MethodDirect:
		return cipher.DecryptDirect(req.Result, priv)
	case domain.MethodSignatureGroup:
		if req.Group == nil {
			return nil, fmt.Errorf("group decryption needs the group: %w", domain.ErrValidation)
		}
		return group.Decrypt(req.Result, *req.Group, priv)
	case domain.MethodSharedKey:
		if req.SharedKey == nil {
			return nil, fmt.Errorf("shared-key decryption needs the shared key: %w", domain.ErrValidation)
		}
		return sharedkey.Decrypt(req.Result, *req.SharedKey, priv)
	default:
		return nil, fmt.Errorf("unknown encryption method %q: %w", req.Result.Method, domain.ErrValidation)
	}
}

// GenerateKeypair returns a fresh Ed25519 keypair usable with every method.
func GenerateKeypair() (domain.Keypair, error) { return crypto.GenerateKeypair() }

// Sign signs data with priv. Used by callers to attach authorization proofs
// alongside encrypted payloads.
func Sign(data []byte, priv domain.PrivateKey) []byte { return crypto.Sign(data, priv) }

// Verify reports whether sig over data was produced by pub.
func Verify(data, sig []byte, pub domain.PublicKey) bool { return crypto.Verify(data, sig, pub) }
