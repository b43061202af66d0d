package domain

// Holder is one party granted access to a shared key. Each holder carries
// its own wrapped copy of the master secret; no plaintext copy is ever
// shared between holders.
type Holder struct {
	PublicKey   PublicKey         `json:"publicKey"`
	Permissions MemberPermissions `json:"permissions"`
	Wrapped     WrappedKey        `json:"wrappedKey"`
	AddedAt     int64             `json:"addedAt"`
	AddedBy     PublicKey         `json:"addedBy"`
}

// SharedKey is a named, persistent multi-holder key. The holder list is
// uniquely keyed by public key. Like SignatureGroup, the structure is
// immutable and version-checked on mutation.
type SharedKey struct {
	KeyID            string    `json:"keyId"`
	Name             string    `json:"name"`
	Purpose          string    `json:"purpose"`
	Creator          PublicKey `json:"creator"`
	Algorithm        string    `json:"algorithm"`
	DerivationMethod string    `json:"derivationMethod"`
	Version          uint64    `json:"version"`
	CreatedAt        int64     `json:"createdAt"`
	Holders          []Holder  `json:"holders"`
}

// Holder returns the entry for pub, if present.
func (k *SharedKey) Holder(pub PublicKey) (Holder, bool) {
	for _, h := range k.Holders {
		if h.PublicKey == pub {
			return h, true
		}
	}
	return Holder{}, false
}
