// Package commands wires the keymesh CLI: identity management plus
// personal and direct encryption of files or stdin. Envelopes are printed
// and consumed as the stable JSON wire format.
package commands
