// Package scalable manages encryption contexts that start 1:1 and
// transparently become group contexts as the recipient set grows.
//
// A context begins in DIRECT mode addressing one recipient. When a
// recipient addition makes the set reach the context's auto-transition
// threshold, the package atomically creates a shared key seeded with every
// current and new recipient plus the creator, and flips the context to GROUP
// mode. Encryption then dispatches to the shared key instead of the direct
// cipher.
//
// The package holds no registry: callers pass the current context (and, in
// GROUP mode, the current shared key) into every operation and store the
// returned values. Mutations are version-checked like the other managers.
package scalable
