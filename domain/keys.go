package domain

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// PublicKey is an Ed25519 public key. It identifies a party everywhere in
// keymesh: group members, shared-key holders and context recipients are all
// keyed by their public key.
type PublicKey [32]byte

// Slice returns the key as a []byte.
func (p PublicKey) Slice() []byte { return p[:] }

// Hex returns the lowercase hex encoding of the key. Used as a map key in
// wire structures.
func (p PublicKey) Hex() string { return hex.EncodeToString(p[:]) }

// MarshalJSON encodes the key as standard base64, the transport encoding of
// every key field in the wire contract.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(p[:]))
}

// UnmarshalJSON decodes a base64 key and checks its length.
func (p *PublicKey) UnmarshalJSON(b []byte) error {
	raw, err := decodeKey(b, len(p))
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	copy(p[:], raw)
	return nil
}

// PrivateKey is an Ed25519 private key in the standard library layout
// (32-byte seed followed by the 32-byte public key).
type PrivateKey [64]byte

// Slice returns the key as a []byte.
func (k PrivateKey) Slice() []byte { return k[:] }

// Seed returns the 32-byte Ed25519 seed.
func (k PrivateKey) Seed() []byte { return k[:ed25519.SeedSize] }

// Public returns the public key embedded in the private key.
func (k PrivateKey) Public() PublicKey {
	var pub PublicKey
	copy(pub[:], k[ed25519.SeedSize:])
	return pub
}

// MarshalJSON encodes the key as standard base64.
func (k PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(k[:]))
}

// UnmarshalJSON decodes a base64 key and checks its length.
func (k *PrivateKey) UnmarshalJSON(b []byte) error {
	raw, err := decodeKey(b, len(k))
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	copy(k[:], raw)
	return nil
}

func decodeKey(b []byte, want int) ([]byte, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%d bytes, want %d: %w", len(raw), want, ErrValidation)
	}
	return raw, nil
}

// Keypair bundles a party's public and private key. Supplied by the caller
// on every operation and never retained by the library.
type Keypair struct {
	Pub  PublicKey  `json:"publicKey"`
	Priv PrivateKey `json:"privateKey"`
}
