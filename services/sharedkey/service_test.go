package sharedkey_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
	"keymesh/services/sharedkey"
)

func makeKeypair(t *testing.T) domain.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func fullPerms() domain.MemberPermissions {
	return domain.MemberPermissions{CanDecrypt: true, CanEncrypt: true, CanShare: true, CanRevoke: true}
}

func rwPerms() domain.MemberPermissions {
	return domain.MemberPermissions{CanDecrypt: true, CanEncrypt: true}
}

func TestCreateSharedKey(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "deploy-secrets", Purpose: "ci"}, []sharedkey.Candidate{
		{PublicKey: bob.Pub, Permissions: rwPerms()},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if k.Creator != alice.Pub || k.Version != 1 {
		t.Fatalf("creator/version wrong: %+v", k)
	}
	if k.Algorithm != sharedkey.Algorithm || k.DerivationMethod != sharedkey.DerivationMethod {
		t.Fatal("algorithm metadata not stamped")
	}
	if len(k.Holders) != 2 {
		t.Fatalf("%d holders, want 2 (creator + bob)", len(k.Holders))
	}
	// Each holder carries its own wrapped copy, never a shared one.
	a, _ := k.Holder(alice.Pub)
	b, _ := k.Holder(bob.Pub)
	if bytes.Equal(a.Wrapped.Ciphertext, b.Wrapped.Ciphertext) {
		t.Fatal("holders share an identical wrapped blob")
	}

	if _, err := sharedkey.Create(sharedkey.Descriptor{}, nil, alice.Priv); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unnamed key err = %v, want ErrValidation", err)
	}
}

func TestSharedKeyRoundTrip(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "notes"}, []sharedkey.Candidate{
		{PublicKey: bob.Pub, Permissions: rwPerms()},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := sharedkey.Encrypt([]byte("shared state"), k, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if res.Method != domain.MethodSharedKey || res.Metadata.KeyID != k.KeyID {
		t.Fatalf("envelope not tagged for the key: %+v", res)
	}
	pt, err := sharedkey.Decrypt(res, k, bob.Priv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, []byte("shared state")) {
		t.Fatal("round trip mismatch")
	}
}

func TestSharedKeyPermissions(t *testing.T) {
	alice := makeKeypair(t)
	reader := makeKeypair(t)
	eve := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "notes"}, []sharedkey.Candidate{
		{PublicKey: reader.Pub, Permissions: domain.MemberPermissions{CanDecrypt: true}},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = sharedkey.Encrypt([]byte("x"), k, reader.Priv, cipher.Options{})
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("read-only encrypt err = %v, want ErrPermission", err)
	}
	if !strings.Contains(err.Error(), "permission to encrypt") {
		t.Fatalf("error %q should mention the missing encrypt permission", err)
	}

	res, err := sharedkey.Encrypt([]byte("x"), k, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := sharedkey.Decrypt(res, k, eve.Priv); !errors.Is(err, domain.ErrMembership) {
		t.Fatalf("non-holder err = %v, want ErrMembership", err)
	}
}

// Adding holders wraps the existing master secret, so new holders can read
// ciphertext produced before they were added.
func TestAddHolders(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)
	carol := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "notes"}, []sharedkey.Candidate{
		{PublicKey: bob.Pub, Permissions: rwPerms()},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	old, err := sharedkey.Encrypt([]byte("pre-carol"), k, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Bob cannot share.
	if _, err := sharedkey.AddHolders(k, k.Version, []sharedkey.Candidate{{PublicKey: carol.Pub, Permissions: rwPerms()}}, bob.Priv); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}

	k2, err := sharedkey.AddHolders(k, k.Version, []sharedkey.Candidate{{PublicKey: carol.Pub, Permissions: rwPerms()}}, alice.Priv)
	if err != nil {
		t.Fatalf("AddHolders: %v", err)
	}
	if k2.Version != k.Version+1 || len(k.Holders) != 2 || len(k2.Holders) != 3 {
		t.Fatal("mutation must return a new incremented copy and leave the input alone")
	}
	pt, err := sharedkey.Decrypt(old, k2, carol.Priv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, []byte("pre-carol")) {
		t.Fatal("new holder cannot read pre-existing ciphertext")
	}

	if _, err := sharedkey.AddHolders(k2, k.Version, []sharedkey.Candidate{{PublicKey: makeKeypair(t).Pub}}, alice.Priv); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("stale version err = %v, want ErrConcurrencyConflict", err)
	}
	if _, err := sharedkey.AddHolders(k2, k2.Version, []sharedkey.Candidate{{PublicKey: carol.Pub}}, alice.Priv); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("duplicate holder err = %v, want ErrValidation", err)
	}
}

// A shared key must survive a JSON round trip with every holder's wrapped
// copy intact.
func TestSharedKeySurvivesStorage(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "notes"}, []sharedkey.Candidate{
		{PublicKey: bob.Pub, Permissions: rwPerms()},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, err := sharedkey.Encrypt([]byte("durable"), k, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back domain.SharedKey
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	pt, err := sharedkey.Decrypt(res, back, bob.Priv)
	if err != nil {
		t.Fatalf("Decrypt from stored key: %v", err)
	}
	if !bytes.Equal(pt, []byte("durable")) {
		t.Fatal("round trip mismatch")
	}
}

func TestRemoveHoldersWithRotation(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	k, err := sharedkey.Create(sharedkey.Descriptor{Name: "notes"}, []sharedkey.Candidate{
		{PublicKey: bob.Pub, Permissions: rwPerms()},
	}, alice.Priv)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	old, err := sharedkey.Encrypt([]byte("old"), k, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	k2, err := sharedkey.RemoveHolders(k, k.Version, []domain.PublicKey{bob.Pub}, alice.Priv, true)
	if err != nil {
		t.Fatalf("RemoveHolders: %v", err)
	}
	if _, ok := k2.Holder(bob.Pub); ok {
		t.Fatal("bob still a holder")
	}

	fresh, err := sharedkey.Encrypt([]byte("fresh"), k2, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := sharedkey.Decrypt(fresh, k2, bob.Priv); !errors.Is(err, domain.ErrMembership) {
		t.Fatalf("bob err = %v, want ErrMembership", err)
	}
	// The rotated secret cannot open pre-rotation ciphertext; the caller's
	// retained previous version still can.
	if _, err := sharedkey.Decrypt(old, k2, alice.Priv); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("old ct under rotated key err = %v, want ErrAuthentication", err)
	}
	if pt, err := sharedkey.Decrypt(old, k, alice.Priv); err != nil || !bytes.Equal(pt, []byte("old")) {
		t.Fatalf("previous version must still open old ciphertext: %q, %v", pt, err)
	}

	if _, err := sharedkey.RemoveHolders(k2, k2.Version, []domain.PublicKey{alice.Pub}, alice.Priv, false); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("removing the creator err = %v, want ErrPermission", err)
	}
}
