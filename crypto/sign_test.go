package crypto_test

import (
	"testing"

	"keymesh/crypto"
)

func TestSignVerify(t *testing.T) {
	signer := makeKeypair(t)
	other := makeKeypair(t)
	data := []byte("authorize: add-member")

	sig := crypto.Sign(data, signer.Priv)

	if !crypto.Verify(data, sig, signer.Pub) {
		t.Fatal("valid signature rejected")
	}
	if crypto.Verify(data, sig, other.Pub) {
		t.Fatal("signature accepted for the wrong signer")
	}
	if crypto.Verify([]byte("authorize: remove-member"), sig, signer.Pub) {
		t.Fatal("signature accepted over modified data")
	}
	otherSig := crypto.Sign([]byte("something else"), signer.Priv)
	if crypto.Verify(data, otherSig, signer.Pub) {
		t.Fatal("signature replayed against different data was accepted")
	}
}
