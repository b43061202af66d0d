// Package sharedkey implements named, persistent multi-holder keys with
// per-holder permission grants.
//
// One random master secret is generated at creation and wrapped individually
// for every holder; adding holders wraps the existing secret (no rotation),
// which is cheaper than group epoch rotation and appropriate when forward
// secrecy against future members is not required. Removal may rotate the
// master secret, re-wrapping it for the remaining holders.
//
// All functions are pure and version-checked; see package group for the
// concurrency contract.
package sharedkey
