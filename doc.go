// Package keymesh is an encryption and key-management core for applications
// whose parties hold Ed25519 keypairs.
//
// A private-key holder can encrypt data for themselves (PERSONAL), for one
// other party with forward secrecy (DIRECT), for a role-permissioned group
// with epoch-based key rotation (SIGNATURE_GROUP), or under a named
// multi-holder key (SHARED_KEY). The Manager in this package dispatches by
// method; the constructions live in keymesh/cipher and the group and
// shared-key managers in keymesh/services.
//
// The library performs no I/O, persists nothing and holds no locks. Group,
// shared-key and context structures are immutable values: every mutation
// returns a new version, and callers serialize concurrent mutations by
// passing the version they read.
package keymesh
