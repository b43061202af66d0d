package domain

// Role is a member's role within a signature group.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// MemberPermissions are the per-member capability bits. The same shape is
// used for shared-key holders.
type MemberPermissions struct {
	CanDecrypt bool `json:"canDecrypt"`
	CanEncrypt bool `json:"canEncrypt"`
	CanShare   bool `json:"canShare"`
	CanRevoke  bool `json:"canRevoke"`
}

// DefaultPermissions returns the capability bits a role grants when no
// explicit permissions are supplied.
func (r Role) DefaultPermissions() MemberPermissions {
	switch r {
	case RoleOwner, RoleAdmin:
		return MemberPermissions{CanDecrypt: true, CanEncrypt: true, CanShare: true, CanRevoke: true}
	case RoleMember:
		return MemberPermissions{CanDecrypt: true, CanEncrypt: true}
	case RoleViewer:
		return MemberPermissions{CanDecrypt: true}
	default:
		return MemberPermissions{}
	}
}

// GroupPermissions govern the group as a whole.
type GroupPermissions struct {
	AllowDynamicMembership       bool `json:"allowDynamicMembership"`
	MaxMembers                   int  `json:"maxMembers"`
	RequireSignatureVerification bool `json:"requireSignatureVerification"`
}

// Member is one party in a signature group.
type Member struct {
	PublicKey   PublicKey         `json:"publicKey"`
	Role        Role              `json:"role"`
	JoinedAt    int64             `json:"joinedAt"`
	AddedBy     PublicKey         `json:"addedBy"`
	Permissions MemberPermissions `json:"permissions"`
}

// Epoch is one generation of a group's content key. Epochs are append-only;
// rotation advances the active pointer without deleting history.
type Epoch struct {
	Number      uint64 `json:"epochNumber"`
	StartTime   int64  `json:"startTime"`
	MasterKeyID string `json:"masterKeyId"`
}

// SignatureGroup is a dynamic, role-permissioned multi-party group.
//
// KeyShares maps epoch number -> member public key (hex) -> that member's
// wrapped copy of the epoch content key. A member can only open ciphertext
// from epochs in which they held a share.
//
// The structure is immutable: every mutation returns a new value with
// Version incremented. Callers serialize concurrent mutations by passing the
// version they read; a mismatch surfaces ErrConcurrencyConflict.
type SignatureGroup struct {
	ID          string                           `json:"groupId"`
	Name        string                           `json:"groupName"`
	Version     uint64                           `json:"version"`
	Members     []Member                         `json:"members"`
	Permissions GroupPermissions                 `json:"permissions"`
	KeyShares   map[uint64]map[string]WrappedKey `json:"keyShares"`
	Epochs      []Epoch                          `json:"epochs"`
}

// ActiveEpoch returns the current epoch. Epochs are totally ordered and
// append-only, so the active epoch is always the last one.
func (g *SignatureGroup) ActiveEpoch() Epoch {
	return g.Epochs[len(g.Epochs)-1]
}

// Member returns the roster entry for pub, if present.
func (g *SignatureGroup) Member(pub PublicKey) (Member, bool) {
	for _, m := range g.Members {
		if m.PublicKey == pub {
			return m, true
		}
	}
	return Member{}, false
}
