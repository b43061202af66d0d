package domain

// ContextMethod is the current mode of an EncryptionContext.
type ContextMethod string

const (
	ContextDirect ContextMethod = "DIRECT"
	ContextGroup  ContextMethod = "GROUP"
)

// EncryptionContext tracks a conversation that starts 1:1 and may grow into
// a group. While Method is DIRECT the context addresses a single recipient;
// once the recipient count reaches AutoTransitionThreshold the context flips
// to GROUP and SharedKeyID references the shared key seeded with all
// recipients plus the creator.
type EncryptionContext struct {
	ContextID               string        `json:"contextId"`
	Name                    string        `json:"name"`
	Purpose                 string        `json:"purpose"`
	Method                  ContextMethod `json:"method"`
	Creator                 PublicKey     `json:"creator"`
	Recipients              []PublicKey   `json:"recipients"`
	SharedKeyID             string        `json:"sharedKeyId,omitempty"`
	AutoTransitionThreshold int           `json:"autoTransitionThreshold"`
	Version                 uint64        `json:"version"`
	CreatedAt               int64         `json:"createdAt"`
}

// Recipient reports whether pub is in the recipient list.
func (c *EncryptionContext) Recipient(pub PublicKey) bool {
	for _, r := range c.Recipients {
		if r == pub {
			return true
		}
	}
	return false
}
