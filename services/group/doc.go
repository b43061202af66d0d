// Package group implements dynamic, role-permissioned signature groups with
// epoch-based key rotation.
//
// A group holds one content key per epoch, wrapped individually for every
// member. Removing a member with rotation starts a new epoch with a fresh
// key, so ciphertext produced afterwards is unreachable for the removed
// member, while epochs they were wrapped into remain readable to them.
//
// All functions are pure: mutations take the whole current group plus the
// version the caller read, and return a new group with Version incremented.
// Passing a stale version surfaces domain.ErrConcurrencyConflict. The
// package holds no state and does no locking; callers serialize concurrent
// mutations to the same group.
package group
