package sharedkey

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
)

// Algorithm and derivation identifiers stamped into every shared key.
const (
	Algorithm        = "chacha20poly1305"
	DerivationMethod = "hkdf-sha256"
)

// Descriptor names a shared key at creation.
type Descriptor struct {
	Name    string
	Purpose string
}

// Candidate describes a holder to be granted access.
type Candidate struct {
	PublicKey   domain.PublicKey
	Permissions domain.MemberPermissions
}

// Create generates a shared key: one random master secret, wrapped per
// holder. The creator is always a holder with full permissions.
func Create(desc Descriptor, holders []Candidate, creator domain.PrivateKey) (domain.SharedKey, error) {
	if desc.Name == "" {
		return domain.SharedKey{}, fmt.Errorf("shared key name is empty: %w", domain.ErrValidation)
	}

	master := make([]byte, crypto.KeySize)
	if _, err := rand.Read(master); err != nil {
		return domain.SharedKey{}, err
	}
	defer crypto.Wipe(master)

	now := time.Now().Unix()
	creatorPub := creator.Public()
	k := domain.SharedKey{
		KeyID:            uuid.NewString(),
		Name:             desc.Name,
		Purpose:          desc.Purpose,
		Creator:          creatorPub,
		Algorithm:        Algorithm,
		DerivationMethod: DerivationMethod,
		Version:          1,
		CreatedAt:        now,
	}

	all := append([]Candidate{{
		PublicKey:   creatorPub,
		Permissions: domain.MemberPermissions{CanDecrypt: true, CanEncrypt: true, CanShare: true, CanRevoke: true},
	}}, holders...)
	for _, c := range all {
		if _, dup := k.Holder(c.PublicKey); dup {
			continue // creator listed among holders, or a repeated entry
		}
		w, err := cipher.WrapKey(master, c.PublicKey, creator)
		if err != nil {
			return domain.SharedKey{}, err
		}
		k.Holders = append(k.Holders, domain.Holder{
			PublicKey:   c.PublicKey,
			Permissions: c.Permissions,
			Wrapped:     w,
			AddedAt:     now,
			AddedBy:     creatorPub,
		})
	}
	return k, nil
}

// AddHolders wraps the existing master secret for each new holder. The
// authorizer must hold the share permission; their own wrapped copy supplies
// the secret.
func AddHolders(k domain.SharedKey, expectedVersion uint64, newHolders []Candidate, authorizer domain.PrivateKey) (domain.SharedKey, error) {
	if err := checkVersion(&k, expectedVersion); err != nil {
		return domain.SharedKey{}, err
	}
	auth, err := requireHolder(&k, authorizer.Public())
	if err != nil {
		return domain.SharedKey{}, err
	}
	if !auth.Permissions.CanShare {
		return domain.SharedKey{}, fmt.Errorf("holder %s lacks permission to share: %w", crypto.Fingerprint(auth.PublicKey.Slice()), domain.ErrPermission)
	}
	for _, c := range newHolders {
		if _, dup := k.Holder(c.PublicKey); dup {
			return domain.SharedKey{}, fmt.Errorf("%s already holds key %s: %w", crypto.Fingerprint(c.PublicKey.Slice()), k.KeyID, domain.ErrValidation)
		}
	}

	master, err := cipher.UnwrapKey(auth.Wrapped, authorizer)
	if err != nil {
		return domain.SharedKey{}, err
	}
	defer crypto.Wipe(master)

	next := clone(&k)
	now := time.Now().Unix()
	for _, c := range newHolders {
		w, err := cipher.WrapKey(master, c.PublicKey, authorizer)
		if err != nil {
			return domain.SharedKey{}, err
		}
		next.Holders = append(next.Holders, domain.Holder{
			PublicKey:   c.PublicKey,
			Permissions: c.Permissions,
			Wrapped:     w,
			AddedAt:     now,
			AddedBy:     auth.PublicKey,
		})
	}
	next.Version++
	return next, nil
}

// RemoveHolders drops holders. With rotate set, a fresh master secret is
// generated and re-wrapped for the remaining holders; ciphertext sealed
// under the old secret stays readable only through prior versions of the
// structure, which the caller may retain.
func RemoveHolders(k domain.SharedKey, expectedVersion uint64, removed []domain.PublicKey, authorizer domain.PrivateKey, rotate bool) (domain.SharedKey, error) {
	if err := checkVersion(&k, expectedVersion); err != nil {
		return domain.SharedKey{}, err
	}
	auth, err := requireHolder(&k, authorizer.Public())
	if err != nil {
		return domain.SharedKey{}, err
	}
	if !auth.Permissions.CanRevoke {
		return domain.SharedKey{}, fmt.Errorf("holder %s lacks permission to revoke: %w", crypto.Fingerprint(auth.PublicKey.Slice()), domain.ErrPermission)
	}
	drop := make(map[domain.PublicKey]bool, len(removed))
	for _, pub := range removed {
		if _, ok := k.Holder(pub); !ok {
			return domain.SharedKey{}, fmt.Errorf("%s does not hold key %s: %w", crypto.Fingerprint(pub.Slice()), k.KeyID, domain.ErrMembership)
		}
		if pub == k.Creator {
			return domain.SharedKey{}, fmt.Errorf("the key creator cannot be removed: %w", domain.ErrPermission)
		}
		drop[pub] = true
	}

	next := clone(&k)
	kept := next.Holders[:0]
	for _, h := range next.Holders {
		if !drop[h.PublicKey] {
			kept = append(kept, h)
		}
	}
	next.Holders = kept

	if rotate {
		master := make([]byte, crypto.KeySize)
		if _, err := rand.Read(master); err != nil {
			return domain.SharedKey{}, err
		}
		defer crypto.Wipe(master)

		for i := range next.Holders {
			w, err := cipher.WrapKey(master, next.Holders[i].PublicKey, authorizer)
			if err != nil {
				return domain.SharedKey{}, err
			}
			next.Holders[i].Wrapped = w
		}
	}

	next.Version++
	return next, nil
}

// Encrypt seals data under the master secret. The caller must hold the
// encrypt permission.
func Encrypt(data []byte, k domain.SharedKey, caller domain.PrivateKey, opts cipher.Options) (domain.EncryptionResult, error) {
	h, err := requireHolder(&k, caller.Public())
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	if !h.Permissions.CanEncrypt {
		return domain.EncryptionResult{}, fmt.Errorf("holder %s lacks permission to encrypt: %w", crypto.Fingerprint(h.PublicKey.Slice()), domain.ErrPermission)
	}

	master, err := cipher.UnwrapKey(h.Wrapped, caller)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	defer crypto.Wipe(master)

	ct, nonce, compressed, err := crypto.Seal(data, master, opts.Compress)
	if err != nil {
		return domain.EncryptionResult{}, err
	}
	senderPub := h.PublicKey
	return domain.EncryptionResult{
		EncryptedData: ct,
		Method:        domain.MethodSharedKey,
		Metadata: domain.Metadata{
			Nonce:           nonce,
			Timestamp:       time.Now().Unix(),
			Version:         domain.FormatVersion,
			Compressed:      compressed,
			SenderPublicKey: &senderPub,
			KeyID:           k.KeyID,
		},
	}, nil
}

// Decrypt opens shared-key ciphertext. The caller must hold the decrypt
// permission.
func Decrypt(res domain.EncryptionResult, k domain.SharedKey, caller domain.PrivateKey) ([]byte, error) {
	if res.Method != domain.MethodSharedKey {
		return nil, fmt.Errorf("result method is %s, want %s: %w", res.Method, domain.MethodSharedKey, domain.ErrValidation)
	}
	if res.Metadata.KeyID != k.KeyID {
		return nil, fmt.Errorf("result belongs to key %s, not %s: %w", res.Metadata.KeyID, k.KeyID, domain.ErrValidation)
	}
	h, err := requireHolder(&k, caller.Public())
	if err != nil {
		return nil, err
	}
	if !h.Permissions.CanDecrypt {
		return nil, fmt.Errorf("holder %s lacks permission to decrypt: %w", crypto.Fingerprint(h.PublicKey.Slice()), domain.ErrPermission)
	}

	master, err := cipher.UnwrapKey(h.Wrapped, caller)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(master)

	return crypto.Open(res.EncryptedData, master, res.Metadata.Nonce, res.Metadata.Compressed)
}

func checkVersion(k *domain.SharedKey, expected uint64) error {
	if k.Version != expected {
		return fmt.Errorf("key %s is at version %d, caller expected %d: %w", k.KeyID, k.Version, expected, domain.ErrConcurrencyConflict)
	}
	return nil
}

func requireHolder(k *domain.SharedKey, pub domain.PublicKey) (domain.Holder, error) {
	h, ok := k.Holder(pub)
	if !ok {
		return domain.Holder{}, fmt.Errorf("%s does not hold key %s: %w", crypto.Fingerprint(pub.Slice()), k.KeyID, domain.ErrMembership)
	}
	return h, nil
}

func clone(k *domain.SharedKey) domain.SharedKey {
	next := *k
	next.Holders = append([]domain.Holder(nil), k.Holders...)
	return next
}
