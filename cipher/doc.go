// Package cipher implements the keymesh encryption constructions on top of
// package crypto: personal (self-agreement), direct (ephemeral ECDH to one
// recipient) and key wrapping for group shares.
//
// Every function here is pure and synchronous with no shared mutable state,
// so arbitrary concurrent callers need no coordination.
package cipher
