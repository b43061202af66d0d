package domain

// FormatVersion is the wire-format version stamped into every envelope.
const FormatVersion = "1.0.0"

// Method names the cipher family that produced an EncryptionResult.
type Method string

const (
	MethodPersonal       Method = "PERSONAL"
	MethodDirect         Method = "DIRECT"
	MethodSignatureGroup Method = "SIGNATURE_GROUP"
	MethodSharedKey      Method = "SHARED_KEY"
)

// Metadata carries everything a holder of the right key needs to open an
// envelope. Method-specific fields are set only for their variant.
type Metadata struct {
	Nonce      []byte `json:"nonce"`
	Timestamp  int64  `json:"timestamp"`
	Version    string `json:"version"`
	Compressed bool   `json:"compressed"`

	// PERSONAL and DIRECT. Sender is carried for provenance only; key
	// derivation never depends on it.
	SenderPublicKey    *PublicKey `json:"senderPublicKey,omitempty"`
	RecipientPublicKey *PublicKey `json:"recipientPublicKey,omitempty"`

	// DIRECT: the X25519 public half of the ephemeral pair generated for
	// this envelope. The private half is discarded after sealing.
	EphemeralPublicKey []byte `json:"ephemeralPublicKey,omitempty"`

	// SIGNATURE_GROUP: which group and key epoch sealed the data.
	GroupID string  `json:"groupId,omitempty"`
	Epoch   *uint64 `json:"epoch,omitempty"`

	// SHARED_KEY: which shared key sealed the data.
	KeyID string `json:"keyId,omitempty"`
}

// EncryptionResult is the output of every encrypt operation. Field names are
// a stable wire contract; consumers persist and transmit this structure.
type EncryptionResult struct {
	EncryptedData []byte   `json:"encryptedData"`
	Method        Method   `json:"method"`
	Metadata      Metadata `json:"metadata"`
}

// WrappedKey is a content key encrypted individually for one recipient using
// an ephemeral X25519 agreement, so only that recipient can recover it.
type WrappedKey struct {
	Ciphertext         []byte    `json:"ciphertext"`
	Nonce              []byte    `json:"nonce"`
	EphemeralPublicKey []byte    `json:"ephemeralPublicKey"`
	SenderPublicKey    PublicKey `json:"senderPublicKey"`
}
