package crypto

import "keymesh/internal/util/memzero"

// Wipe overwrites b with zeros. Used to bound the lifetime of derived keys
// and ephemeral secrets, including on error paths.
func Wipe(b []byte) { memzero.Zero(b) }
