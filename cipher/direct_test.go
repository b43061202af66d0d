package cipher_test

import (
	"bytes"
	"errors"
	"testing"

	"keymesh/cipher"
	"keymesh/domain"
)

func TestDirectRoundTrip(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	for _, plaintext := range [][]byte{
		[]byte("for bob's eyes only"),
		{},
		allByteValues(),
	} {
		res, err := cipher.EncryptDirect(plaintext, bob.Pub, alice.Priv, cipher.Options{})
		if err != nil {
			t.Fatalf("EncryptDirect: %v", err)
		}
		pt, err := cipher.DecryptDirect(res, bob.Priv)
		if err != nil {
			t.Fatalf("DecryptDirect: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Fatal("round trip mismatch")
		}
	}
}

func TestDirectMetadata(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	res, err := cipher.EncryptDirect([]byte("hi"), bob.Pub, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("EncryptDirect: %v", err)
	}
	md := res.Metadata
	if res.Method != domain.MethodDirect {
		t.Fatalf("method = %s, want DIRECT", res.Method)
	}
	if md.SenderPublicKey == nil || *md.SenderPublicKey != alice.Pub {
		t.Fatal("sender public key missing or wrong")
	}
	if md.RecipientPublicKey == nil || *md.RecipientPublicKey != bob.Pub {
		t.Fatal("recipient public key missing or wrong")
	}
	if len(md.EphemeralPublicKey) != 32 {
		t.Fatalf("ephemeral public key is %d bytes, want 32", len(md.EphemeralPublicKey))
	}
	if md.Version == "" || md.Timestamp == 0 {
		t.Fatal("version/timestamp not stamped")
	}
}

func TestDirectKeyIsolation(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)
	eve := makeKeypair(t)

	res, err := cipher.EncryptDirect([]byte("secret"), bob.Pub, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("EncryptDirect: %v", err)
	}
	if _, err := cipher.DecryptDirect(res, eve.Priv); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("eve: err = %v, want ErrAuthentication", err)
	}
	// The sender cannot read it back either: the symmetric key depended on
	// the discarded ephemeral private key, not the sender's.
	if _, err := cipher.DecryptDirect(res, alice.Priv); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("alice: err = %v, want ErrAuthentication", err)
	}
}

// Non-determinism is a correctness requirement: repeated encryptions of the
// same plaintext to the same recipient must never share nonces, ephemeral
// keys or ciphertext.
func TestDirectEncryptionsAreUnique(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	const n = 8
	nonces := make(map[string]bool, n)
	ephemerals := make(map[string]bool, n)
	ciphertexts := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		res, err := cipher.EncryptDirect([]byte("same plaintext"), bob.Pub, alice.Priv, cipher.Options{})
		if err != nil {
			t.Fatalf("EncryptDirect: %v", err)
		}
		if nonces[string(res.Metadata.Nonce)] {
			t.Fatal("nonce repeated")
		}
		if ephemerals[string(res.Metadata.EphemeralPublicKey)] {
			t.Fatal("ephemeral key repeated")
		}
		if ciphertexts[string(res.EncryptedData)] {
			t.Fatal("ciphertext repeated")
		}
		nonces[string(res.Metadata.Nonce)] = true
		ephemerals[string(res.Metadata.EphemeralPublicKey)] = true
		ciphertexts[string(res.EncryptedData)] = true
	}
}

func TestDirectRejectsMangledEphemeral(t *testing.T) {
	alice := makeKeypair(t)
	bob := makeKeypair(t)

	res, err := cipher.EncryptDirect([]byte("x"), bob.Pub, alice.Priv, cipher.Options{})
	if err != nil {
		t.Fatalf("EncryptDirect: %v", err)
	}
	res.Metadata.EphemeralPublicKey = res.Metadata.EphemeralPublicKey[:16]
	if _, err := cipher.DecryptDirect(res, bob.Priv); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
