package group

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
)

// DefaultMaxMembers applies when GroupPermissions.MaxMembers is zero.
const DefaultMaxMembers = 128

// Candidate describes a member to be added. Empty Permissions fall back to
// the role's defaults.
type Candidate struct {
	PublicKey   domain.PublicKey
	Role        domain.Role
	Permissions *domain.MemberPermissions
}

// Create builds a new group. The creator becomes OWNER, epoch 0 is generated
// with a fresh random content key, and the key is wrapped for the creator
// and every initial member.
func Create(name string, creator domain.PrivateKey, initial []Candidate, perms domain.GroupPermissions) (domain.SignatureGroup, error) {
	if name == "" {
		return domain.SignatureGroup{}, fmt.Errorf("group name is empty: %w", domain.ErrValidation)
	}
	if perms.MaxMembers == 0 {
		perms.MaxMembers = DefaultMaxMembers
	}
	if len(initial)+1 > perms.MaxMembers {
		return domain.SignatureGroup{}, fmt.Errorf("%d members exceeds max of %d: %w", len(initial)+1, perms.MaxMembers, domain.ErrValidation)
	}

	now := time.Now().Unix()
	creatorPub := creator.Public()

	g := domain.SignatureGroup{
		ID:          uuid.NewString(),
		Name:        name,
		Version:     1,
		Permissions: perms,
		KeyShares:   map[uint64]map[string]domain.WrappedKey{},
		Epochs: []domain.Epoch{{
			Number:      0,
			StartTime:   now,
			MasterKeyID: uuid.NewString(),
		}},
	}
	g.Members = append(g.Members, domain.Member{
		PublicKey:   creatorPub,
		Role:        domain.RoleOwner,
		JoinedAt:    now,
		AddedBy:     creatorPub,
		Permissions: domain.RoleOwner.DefaultPermissions(),
	})
	for _, c := range initial {
		if c.PublicKey == creatorPub {
			continue
		}
		if _, dup := g.Member(c.PublicKey); dup {
			return domain.SignatureGroup{}, fmt.Errorf("duplicate member %s: %w", crypto.Fingerprint(c.PublicKey.Slice()), domain.ErrValidation)
		}
		g.Members = append(g.Members, newMember(c, creatorPub, now))
	}

	contentKey := make([]byte, crypto.KeySize)
	if _, err := rand.Read(contentKey); err != nil {
		return domain.SignatureGroup{}, err
	}
	defer crypto.Wipe(contentKey)

	shares := make(map[string]domain.WrappedKey, len(g.Members))
	for _, m := range g.Members {
		w, err := cipher.WrapKey(contentKey, m.PublicKey, creator)
		if err != nil {
			return domain.SignatureGroup{}, err
		}
		shares[m.PublicKey.Hex()] = w
	}
	g.KeyShares[0] = shares
	return g, nil
}

// AddMember admits a new member and wraps the active epoch's content key for
// them. They gain no access to prior epochs. The authorizer needs the share
// permission (or the OWNER/ADMIN role) and must themselves hold a share of
// the active epoch.
func AddMember(g domain.SignatureGroup, expectedVersion uint64, cand Candidate, authorizer domain.PrivateKey) (domain.SignatureGroup, error) {
	if err := checkVersion(&g, expectedVersion); err != nil {
		return domain.SignatureGroup{}, err
	}
	auth, err := requireMember(&g, authorizer.Public())
	if err != nil {
		return domain.SignatureGroup{}, err
	}
	if !canShare(auth) {
		return domain.SignatureGroup{}, fmt.Errorf("member %s lacks permission to share: %w", crypto.Fingerprint(auth.PublicKey.Slice()), domain.ErrPermission)
	}
	if !g.Permissions.AllowDynamicMembership {
		return domain.SignatureGroup{}, fmt.Errorf("group %s does not allow dynamic membership: %w", g.ID, domain.ErrPermission)
	}
	if _, dup := g.Member(cand.PublicKey); dup {
		return domain.SignatureGroup{}, fmt.Errorf("already a member: %w", domain.ErrValidation)
	}
	if len(g.Members) >= g.Permissions.MaxMembers {
		return domain.SignatureGroup{}, fmt.Errorf("group is at max of %d members: %w", g.Permissions.MaxMembers, domain.ErrValidation)
	}
	if err := verifyAuthorizer(&g, "add-member", cand.PublicKey, authorizer); err != nil {
		return domain.SignatureGroup{}, err
	}

	epoch := g.ActiveEpoch()
	contentKey, err := unwrapShare(&g, epoch.Number, auth.PublicKey, authorizer)
	if err != nil {
		return domain.SignatureGroup{}, err
	}
	defer crypto.Wipe(contentKey)

	wrapped, err := cipher.WrapKey(contentKey, cand.PublicKey, authorizer)
	if err != nil {
		return domain.SignatureGroup{}, err
	}

	next := clone(&g)
	next.Members = append(next.Members, newMember(cand, auth.PublicKey, time.Now().Unix()))
	next.KeyShares[epoch.Number][cand.PublicKey.Hex()] = wrapped
	next.Version++
	return next, nil
}

// RemoveMember drops a member from the roster. With rotate set, a new epoch
// is generated with a fresh content key wrapped for every remaining member,
// making all later ciphertext unreachable for the removed member. Without
// rotation the roster shrinks but the active key is unchanged, which is a
// caller-accepted risk.
func RemoveMember(g domain.SignatureGroup, expectedVersion uint64, member domain.PublicKey, authorizer domain.PrivateKey, rotate bool) (domain.SignatureGroup, error) {
	if err := checkVersion(&g, expectedVersion); err != nil {
		return domain.SignatureGroup{}, err
	}
	auth, err := requireMember(&g, authorizer.Public())
	if err != nil {
		return domain.SignatureGroup{}, err
	}
	if !auth.Permissions.CanRevoke {
		return domain.SignatureGroup{}, fmt.Errorf("member %s lacks permission to revoke: %w", crypto.Fingerprint(auth.PublicKey.Slice()), domain.ErrPermission)
	}
	target, ok := g.Member(member)
	if !ok {
		return domain.SignatureGroup{}, fmt.Errorf("target is not a member of group %s: %w", g.ID, domain.ErrMembership)
	}
	if target.Role == domain.RoleOwner {
		return domain.SignatureGroup{}, fmt.Errorf("the group owner cannot be removed: %w", domain.ErrPermission)
	}
	if err := verifyAuthorizer(&g, "remove-member", member, authorizer); err != nil {
		return domain.SignatureGroup{}, err
	}

	next := clone(&g)
	kept := next.Members[:0]
	for _, m := range next.Members {
		if m.PublicKey != member {
			kept = append(kept, m)
		}
	}
	next.Members = kept
	delete(next.KeyShares[next.ActiveEpoch().Number], member.Hex())

	if rotate {
		contentKey := make([]byte, crypto.KeySize)
		if _, err := rand.Read(contentKey); err != nil {
			return domain.SignatureGroup{}, err
		}
		defer crypto.Wipe(contentKey)

		epoch := domain.Epoch{
			Number:      next.ActiveEpoch().Number + 1,
			StartTime:   time.Now().Unix(),
			MasterKeyID: uuid.NewString(),
		}
		shares := make(map[string]domain.WrappedKey, len(next.Members))
		for _, m := range next.Members {
			w, err := cipher.WrapKey(contentKey, m.PublicKey, authorizer)
			if err != nil {
				return domain.SignatureGroup{}, err
			}
			shares[m.PublicKey.Hex()] = w
		}
		next.Epochs = append(next.Epochs, epoch)
		next.KeyShares[epoch.Number] = shares
	}

	next.Version++
	return next, nil
}

// Encrypt seals data under the group's active epoch key. The sender must be
// a current member with the encrypt permission; their own share is unwrapped
// to obtain the content key.
func Encrypt(data []byte, g domain.SignatureGroup, sender domain.PrivateKey, opts cipher.Options) (domain.EncryptionResult, error) {
	m, err := requireMember(&g, sender.Public())
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	if !m.Permissions.CanEncrypt {
		return domain.EncryptionResult{}, fmt.Errorf("member %s lacks permission to encrypt: %w", crypto.Fingerprint(m.PublicKey.Slice()), domain.ErrPermission)
	}

	epoch := g.ActiveEpoch()
	contentKey, err := unwrapShare(&g, epoch.Number, m.PublicKey, sender)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	defer crypto.Wipe(contentKey)

	ct, nonce, compressed, err := crypto.Seal(data, contentKey, opts.Compress)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	senderPub := m.PublicKey
	epochNumber := epoch.Number
	return domain.EncryptionResult{
		EncryptedData: ct,
		Method:        domain.MethodSignatureGroup,
		Metadata: domain.Metadata{
			Nonce:           nonce,
			Timestamp:       time.Now().Unix(),
			Version:         domain.FormatVersion,
			Compressed:      compressed,
			SenderPublicKey: &senderPub,
			GroupID:         g.ID,
			Epoch:           &epochNumber,
		},
	}, nil
}

// Decrypt opens group ciphertext. The holder must be a current member with
// the decrypt permission and must hold a share of the epoch referenced by
// the envelope.
func Decrypt(res domain.EncryptionResult, g domain.SignatureGroup, holder domain.PrivateKey) ([]byte, error) {
	if res.Method != domain.MethodSignatureGroup {
		return nil, fmt.Errorf("result method is %s, want %s: %w", res.Method, domain.MethodSignatureGroup, domain.ErrValidation)
	}
	if res.Metadata.GroupID != g.ID {
		return nil, fmt.Errorf("result belongs to group %s, not %s: %w", res.Metadata.GroupID, g.ID, domain.ErrValidation)
	}
	if res.Metadata.Epoch == nil {
		return nil, fmt.Errorf("result is missing the epoch number: %w", domain.ErrValidation)
	}
	m, err := requireMember(&g, holder.Public())
	if err != nil {
		return nil, err
	}
	if !m.Permissions.CanDecrypt {
		return nil, fmt.Errorf("member %s lacks permission to decrypt: %w", crypto.Fingerprint(m.PublicKey.Slice()), domain.ErrPermission)
	}

	contentKey, err := unwrapShare(&g, *res.Metadata.Epoch, m.PublicKey, holder)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(contentKey)

	return crypto.Open(res.EncryptedData, contentKey, res.Metadata.Nonce, res.Metadata.Compressed)
}

func newMember(c Candidate, addedBy domain.PublicKey, now int64) domain.Member {
	perms := c.Role.DefaultPermissions()
	if c.Permissions != nil {
		perms = *c.Permissions
	}
	return domain.Member{
		PublicKey:   c.PublicKey,
		Role:        c.Role,
		JoinedAt:    now,
		AddedBy:     addedBy,
		Permissions: perms,
	}
}

func checkVersion(g *domain.SignatureGroup, expected uint64) error {
	if g.Version != expected {
		return fmt.Errorf("group %s is at version %d, caller expected %d: %w", g.ID, g.Version, expected, domain.ErrConcurrencyConflict)
	}
	return nil
}

func requireMember(g *domain.SignatureGroup, pub domain.PublicKey) (domain.Member, error) {
	m, ok := g.Member(pub)
	if !ok {
		return domain.Member{}, fmt.Errorf("%s is not a member of group %s: %w", crypto.Fingerprint(pub.Slice()), g.ID, domain.ErrMembership)
	}
	return m, nil
}

func canShare(m domain.Member) bool {
	return m.Permissions.CanShare || m.Role == domain.RoleOwner || m.Role == domain.RoleAdmin
}

// verifyAuthorizer checks the mutation proof when the group demands it: an
// Ed25519 signature over a canonical transcript binding group, version,
// operation and subject, checked against the authorizer's claimed public
// key. A private key whose embedded public half does not match its signing
// seed fails here, before any share is unwrapped.
func verifyAuthorizer(g *domain.SignatureGroup, op string, subject domain.PublicKey, authorizer domain.PrivateKey) error {
	if !g.Permissions.RequireSignatureVerification {
		return nil
	}
	transcript := mutationTranscript(g.ID, g.Version, op, subject)
	sig := crypto.Sign(transcript, authorizer)
	if !crypto.Verify(transcript, sig, authorizer.Public()) {
		return fmt.Errorf("authorizer signature did not verify: %w", domain.ErrAuthentication)
	}
	return nil
}

func mutationTranscript(groupID string, version uint64, op string, subject domain.PublicKey) []byte {
	t := make([]byte, 0, len(groupID)+len(op)+8+32)
	t = append(t, groupID...)
	t = binary.BigEndian.AppendUint64(t, version)
	t = append(t, op...)
	t = append(t, subject[:]...)
	return t
}

func unwrapShare(g *domain.SignatureGroup, epoch uint64, pub domain.PublicKey, priv domain.PrivateKey) ([]byte, error) {
	shares, ok := g.KeyShares[epoch]
	if !ok {
		return nil, fmt.Errorf("group %s has no shares for epoch %d: %w", g.ID, epoch, domain.ErrValidation)
	}
	w, ok := shares[pub.Hex()]
	if !ok {
		return nil, fmt.Errorf("%s holds no key share for epoch %d: %w", crypto.Fingerprint(pub.Slice()), epoch, domain.ErrMembership)
	}
	return cipher.UnwrapKey(w, priv)
}

// clone deep-copies a group so mutations never alias the caller's value.
func clone(g *domain.SignatureGroup) domain.SignatureGroup {
	next := *g
	next.Members = append([]domain.Member(nil), g.Members...)
	next.Epochs = append([]domain.Epoch(nil), g.Epochs...)
	next.KeyShares = make(map[uint64]map[string]domain.WrappedKey, len(g.KeyShares))
	for epoch, shares := range g.KeyShares {
		cp := make(map[string]domain.WrappedKey, len(shares))
		for k, v := range shares {
			cp[k] = v
		}
		next.KeyShares[epoch] = cp
	}
	return next
}
