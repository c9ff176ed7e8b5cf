// Package crypto provides the cryptographic primitives behind the symmetric
// and asymmetric envelopes (passphrase KDF, AEAD ciphers, weak legacy KEK,
// and secure-memory zeroing).
//
// This file contains memory zeroing utilities for secure cleanup of
// sensitive data: passphrases, derived keys, ephemeral ECDH scalars, and
// private key bytes.

package crypto

import "crypto/subtle"

// SecureZero overwrites a byte slice with zeros to prevent sensitive data
// from persisting in memory. This helps mitigate memory dump attacks and
// reduces the window during which keys are recoverable from RAM.
//
// ⚠️ SECURITY NOTE: Due to Go's garbage collector and potential compiler
// optimizations, this function cannot guarantee complete erasure. However,
// it significantly reduces the attack surface compared to no cleanup.
//
// The function uses subtle.ConstantTimeCopy to prevent the compiler from
// optimizing away the zeroing operation.
func SecureZero(b []byte) {
	if len(b) == 0 {
		return
	}
	// Use constant-time copy from a zero slice to prevent optimization removal
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// SecureZeroMultiple zeros multiple byte slices in a single call.
// Useful for cleaning up multiple related keys or buffers.
func SecureZeroMultiple(slices ...[]byte) {
	for _, s := range slices {
		SecureZero(s)
	}
}

// CryptoContext holds all sensitive cryptographic materials for one
// encrypt/decrypt operation. Use Close() to securely zero all materials
// when done.
type CryptoContext struct {
	DataKey       []byte // per-message symmetric data key K (C5) or the Argon2 output (C4)
	SharedSecret  []byte // raw ECDH output, zeroed immediately after KEK derivation
	KEK           []byte // per-recipient key-encryption key (C5)
	EphemeralPriv []byte // ephemeral X25519 scalar, zeroed after use
	closed        bool
}

// Close securely zeros all cryptographic materials.
// This should be called via defer immediately after creating the context.
func (cc *CryptoContext) Close() {
	if cc.closed {
		return
	}
	SecureZeroMultiple(
		cc.DataKey,
		cc.SharedSecret,
		cc.KEK,
		cc.EphemeralPriv,
	)
	cc.DataKey = nil
	cc.SharedSecret = nil
	cc.KEK = nil
	cc.EphemeralPriv = nil
	cc.closed = true
}
