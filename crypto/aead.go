package crypto

import (
	"bytes"
	"compress/flate"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"keymesh/domain"
)

// NonceSize is the length of the random nonce generated per seal.
const NonceSize = chacha20poly1305.NonceSize

// Decompressed plaintext is capped to keep a hostile envelope from
// exhausting memory.
const maxDecompressedSize = 64 << 20

// Seal authenticates and encrypts plaintext under a KeySize symmetric key
// with a fresh random nonce. When compress is set the plaintext is
// DEFLATE-compressed first, but only kept if it actually got smaller; the
// returned flag records what the ciphertext contains.
func Seal(plaintext, key []byte, compress bool) (ciphertext, nonce []byte, compressed bool, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, false, err
	}

	if compress {
		c, err := deflate(plaintext)
		if err != nil {
			return nil, nil, false, err
		}
		if len(c) < len(plaintext) {
			plaintext = c
			compressed = true
		}
	}

	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, false, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nonce, compressed, nil
}

// Open authenticates and decrypts ciphertext. The Poly1305 tag check is the
// single gate enforcing confidentiality and integrity everywhere in keymesh;
// any mismatch surfaces as domain.ErrAuthentication. The underlying
// comparison is constant-time.
func Open(ciphertext, key, nonce []byte, compressed bool) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes: %w", NonceSize, domain.ErrValidation)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("aead open: %w", domain.ErrAuthentication)
	}
	if compressed {
		return inflate(plaintext)
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("symmetric key must be %d bytes, got %d: %w", KeySize, len(key), domain.ErrValidation)
	}
	return chacha20poly1305.New(key)
}

func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, maxDecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", domain.ErrValidation)
	}
	return out, nil
}
