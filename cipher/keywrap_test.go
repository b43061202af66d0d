package cipher_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	sender := makeKeypair(t)
	holder := makeKeypair(t)

	contentKey := make([]byte, crypto.KeySize)
	if _, err := rand.Read(contentKey); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	w, err := cipher.WrapKey(contentKey, holder.Pub, sender.Priv)
	if err != nil {
		t.Fatalf("WrapKey: %v", err)
	}
	if w.SenderPublicKey != sender.Pub {
		t.Fatal("wrapped share lost sender provenance")
	}

	got, err := cipher.UnwrapKey(w, holder.Priv)
	if err != nil {
		t.Fatalf("UnwrapKey: %v", err)
	}
	if !bytes.Equal(got, contentKey) {
		t.Fatal("unwrapped key differs from wrapped key")
	}
}

func TestUnwrapRejectsNonHolder(t *testing.T) {
	sender := makeKeypair(t)
	holder := makeKeypair(t)
	eve := makeKeypair(t)

	w, err := cipher.WrapKey(make([]byte, crypto.KeySize), holder.Pub, sender.Priv)
	if err != nil {
		t.Fatalf("WrapKey: %v", err)
	}
	if _, err := cipher.UnwrapKey(w, eve.Priv); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestWrapRejectsEmptyKey(t *testing.T) {
	sender := makeKeypair(t)
	holder := makeKeypair(t)
	if _, err := cipher.WrapKey(nil, holder.Pub, sender.Priv); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
