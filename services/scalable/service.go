package scalable

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
	"keymesh/services/sharedkey"
)

// DefaultThreshold applies when Options.AutoTransitionThreshold is zero.
const DefaultThreshold = 3

// Options tune context creation.
type Options struct {
	// AutoTransitionThreshold is the recipient count at which the context
	// flips from DIRECT to GROUP.
	AutoTransitionThreshold int
}

// Result carries a mutated context and, when the mutation created or
// changed a shared key, the shared key the caller must store alongside it.
type Result struct {
	Context   domain.EncryptionContext
	SharedKey *domain.SharedKey
}

// CreateContext starts a DIRECT-mode context with a single recipient.
func CreateContext(name, purpose string, recipient domain.PublicKey, creator domain.PrivateKey, opts Options) (domain.EncryptionContext, error) {
	if name == "" {
		return domain.EncryptionContext{}, fmt.Errorf("context name is empty: %w", domain.ErrValidation)
	}
	threshold := opts.AutoTransitionThreshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 2 {
		return domain.EncryptionContext{}, fmt.Errorf("auto-transition threshold %d must be at least 2: %w", threshold, domain.ErrValidation)
	}
	return domain.EncryptionContext{
		ContextID:               uuid.NewString(),
		Name:                    name,
		Purpose:                 purpose,
		Method:                  domain.ContextDirect,
		Creator:                 creator.Public(),
		Recipients:              []domain.PublicKey{recipient},
		AutoTransitionThreshold: threshold,
		Version:                 1,
		CreatedAt:               time.Now().Unix(),
	}, nil
}

// Encrypt seals data in the context's current mode: the direct cipher while
// DIRECT, the shared key once transitioned. In GROUP mode the caller passes
// the shared key the context references.
func Encrypt(ctx domain.EncryptionContext, data []byte, sender domain.PrivateKey, key *domain.SharedKey, opts cipher.Options) (domain.EncryptionResult, error) {
	switch ctx.Method {
	case domain.ContextDirect:
		if len(ctx.Recipients) == 0 {
			return domain.EncryptionResult{}, fmt.Errorf("context %s has no recipients: %w", ctx.ContextID, domain.ErrValidation)
		}
		return cipher.EncryptDirect(data, ctx.Recipients[0], sender, opts)
	case domain.ContextGroup:
		if err := checkKey(&ctx, key); err != nil {
			return domain.EncryptionResult{}, err
		}
		return sharedkey.Encrypt(data, *key, sender, opts)
	default:
		return domain.EncryptionResult{}, fmt.Errorf("unknown context method %q: %w", ctx.Method, domain.ErrValidation)
	}
}

// Decrypt opens data sealed in the context.
func Decrypt(ctx domain.EncryptionContext, res domain.EncryptionResult, caller domain.PrivateKey, key *domain.SharedKey) ([]byte, error) {
	switch res.Method {
	case domain.MethodDirect:
		return cipher.DecryptDirect(res, caller)
	case domain.MethodSharedKey:
		if err := checkKey(&ctx, key); err != nil {
			return nil, err
		}
		return sharedkey.Decrypt(res, *key, caller)
	default:
		return nil, fmt.Errorf("result method %s does not belong to a context: %w", res.Method, domain.ErrValidation)
	}
}

// AddRecipients grows the recipient set. Reaching the threshold atomically
// creates a shared key holding every current and new recipient plus the
// creator, and flips the context to GROUP mode. Below the threshold the
// DIRECT recipient list simply grows; only one recipient is addressable by
// the direct cipher, which is a configuration contract with the caller.
func AddRecipients(ctx domain.EncryptionContext, expectedVersion uint64, newRecipients []domain.PublicKey, key *domain.SharedKey, authorizer domain.PrivateKey) (Result, error) {
	if err := checkVersion(&ctx, expectedVersion); err != nil {
		return Result{}, err
	}
	for _, r := range newRecipients {
		if ctx.Recipient(r) {
			return Result{}, fmt.Errorf("%s is already a recipient: %w", crypto.Fingerprint(r.Slice()), domain.ErrValidation)
		}
	}

	switch ctx.Method {
	case domain.ContextDirect:
		if authorizer.Public() != ctx.Creator {
			return Result{}, fmt.Errorf("only the creator mutates a direct context: %w", domain.ErrPermission)
		}
		next := clone(&ctx)
		next.Recipients = append(next.Recipients, newRecipients...)
		next.Version++

		if len(next.Recipients) < next.AutoTransitionThreshold {
			return Result{Context: next}, nil
		}

		// Threshold reached: seed a shared key with every recipient and
		// flip to GROUP.
		holders := make([]sharedkey.Candidate, 0, len(next.Recipients))
		for _, r := range next.Recipients {
			holders = append(holders, sharedkey.Candidate{
				PublicKey:   r,
				Permissions: domain.MemberPermissions{CanDecrypt: true, CanEncrypt: true},
			})
		}
		sk, err := sharedkey.Create(sharedkey.Descriptor{
			Name:    next.Name,
			Purpose: next.Purpose,
		}, holders, authorizer)
		if err != nil {
			return Result{}, err
		}
		next.Method = domain.ContextGroup
		next.SharedKeyID = sk.KeyID
		return Result{Context: next, SharedKey: &sk}, nil

	case domain.ContextGroup:
		if err := checkKey(&ctx, key); err != nil {
			return Result{}, err
		}
		holders := make([]sharedkey.Candidate, 0, len(newRecipients))
		for _, r := range newRecipients {
			holders = append(holders, sharedkey.Candidate{
				PublicKey:   r,
				Permissions: domain.MemberPermissions{CanDecrypt: true, CanEncrypt: true},
			})
		}
		sk, err := sharedkey.AddHolders(*key, key.Version, holders, authorizer)
		if err != nil {
			return Result{}, err
		}
		next := clone(&ctx)
		next.Recipients = append(next.Recipients, newRecipients...)
		next.Version++
		return Result{Context: next, SharedKey: &sk}, nil

	default:
		return Result{}, fmt.Errorf("unknown context method %q: %w", ctx.Method, domain.ErrValidation)
	}
}

// RemoveRecipients shrinks the recipient set. GROUP-mode contexts delegate
// to the shared-key manager, rotating the master secret when asked so
// removed recipients cannot read ciphertext produced afterwards.
func RemoveRecipients(ctx domain.EncryptionContext, expectedVersion uint64, removed []domain.PublicKey, key *domain.SharedKey, authorizer domain.PrivateKey, rotate bool) (Result, error) {
	if err := checkVersion(&ctx, expectedVersion); err != nil {
		return Result{}, err
	}
	for _, r := range removed {
		if !ctx.Recipient(r) {
			return Result{}, fmt.Errorf("%s is not a recipient: %w", crypto.Fingerprint(r.Slice()), domain.ErrMembership)
		}
	}

	drop := make(map[domain.PublicKey]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}

	switch ctx.Method {
	case domain.ContextDirect:
		if authorizer.Public() != ctx.Creator {
			return Result{}, fmt.Errorf("only the creator mutates a direct context: %w", domain.ErrPermission)
		}
		next := clone(&ctx)
		kept := next.Recipients[:0]
		for _, r := range next.Recipients {
			if !drop[r] {
				kept = append(kept, r)
			}
		}
		next.Recipients = kept
		next.Version++
		return Result{Context: next}, nil

	case domain.ContextGroup:
		if err := checkKey(&ctx, key); err != nil {
			return Result{}, err
		}
		sk, err := sharedkey.RemoveHolders(*key, key.Version, removed, authorizer, rotate)
		if err != nil {
			return Result{}, err
		}
		next := clone(&ctx)
		kept := next.Recipients[:0]
		for _, r := range next.Recipients {
			if !drop[r] {
				kept = append(kept, r)
			}
		}
		next.Recipients = kept
		next.Version++
		return Result{Context: next, SharedKey: &sk}, nil

	default:
		return Result{}, fmt.Errorf("unknown context method %q: %w", ctx.Method, domain.ErrValidation)
	}
}

func checkVersion(ctx *domain.EncryptionContext, expected uint64) error {
	if ctx.Version != expected {
		return fmt.Errorf("context %s is at version %d, caller expected %d: %w", ctx.ContextID, ctx.Version, expected, domain.ErrConcurrencyConflict)
	}
	return nil
}

func checkKey(ctx *domain.EncryptionContext, key *domain.SharedKey) error {
	if key == nil {
		return fmt.Errorf("context %s requires its shared key: %w", ctx.ContextID, domain.ErrValidation)
	}
	if key.KeyID != ctx.SharedKeyID {
		return fmt.Errorf("context %s references key %s, got %s: %w", ctx.ContextID, ctx.SharedKeyID, key.KeyID, domain.ErrValidation)
	}
	return nil
}

func clone(ctx *domain.EncryptionContext) domain.EncryptionContext {
	next := *ctx
	next.Recipients = append([]domain.PublicKey(nil), ctx.Recipients...)
	return next
}
