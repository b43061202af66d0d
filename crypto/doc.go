// Package crypto exposes the primitives the keymesh ciphers are built from.
//
// # Contents
//
//   - Ed25519 key generation, signing and verification (GenerateKeypair,
//     Sign, Verify)
//   - Conversion of Ed25519 keys to X25519 form and shared-secret derivation
//     (AgreementPublic, AgreementPrivate, SharedSecret)
//   - Ephemeral X25519 key generation (GenerateAgreementKeypair)
//   - The AEAD codec every cipher seals through (Seal, Open)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// All derived secrets are fixed 32-byte ChaCha20-Poly1305 keys. Callers
// should treat returned key material as sensitive and wipe it with
// internal/util/memzero when done.
package crypto
