// Package domain defines the core data models and error taxonomy shared
// across keymesh. It contains plain types only: keypairs, encryption
// envelopes, groups, shared keys and encryption contexts. Callers own the
// storage of every structure defined here; the library never persists them.
package domain
