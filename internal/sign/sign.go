// Package sign implements detached Ed25519 signing over ciphertext (C3).
//
// The signed object is always the ciphertext (the post-encryption
// envelope payload), never the plaintext. If the envelope is
// unencrypted, the signed bytes equal the plaintext payload. This is a
// design commitment, not an incidental detail: it lets a verifier check
// authorship of a published ciphertext without ever needing the
// decryption key, and it means a signature certifies who published the
// ciphertext rather than who authored the plaintext. It must not be
// inverted to sign-then-encrypt.
package sign

import (
	"crypto/ed25519"

	zerr "zimhide/internal/errors"
)

// Size is the length in bytes of a detached Ed25519 signature.
const Size = ed25519.SignatureSize

// Sign returns the 64-byte detached Ed25519 signature of data under priv.
func Sign(priv ed25519.PrivateKey, data []byte) []byte {
	return ed25519.Sign(priv, data)
}

// Verify checks a detached signature of data under pub. It returns
// ErrBadSignature rather than a bool so callers compose it uniformly with
// the rest of the authentication-failure surface.
func Verify(pub ed25519.PublicKey, data, sig []byte) error {
	if len(sig) != Size {
		return zerr.ErrBadSignature
	}
	if !ed25519.Verify(pub, data, sig) {
		return zerr.ErrBadSignature
	}
	return nil
}
