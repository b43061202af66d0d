// Package store persists the CLI's local identity as a passphrase-encrypted
// file. The keymesh library itself never touches storage; this package
// exists only for cmd/keymesh.
package store
