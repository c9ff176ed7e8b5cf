package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealChaCha20Poly1305 encrypts plaintext under key and a 12-byte nonce
// using ChaCha20-Poly1305, returning ciphertext with the 16-byte tag
// appended. Used by the symmetric envelope (C4).
func SealChaCha20Poly1305(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("constructing ChaCha20-Poly1305: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("bad nonce size: got %d want %d", len(nonce), aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// OpenChaCha20Poly1305 decrypts ciphertext+tag under key and nonce.
func OpenChaCha20Poly1305(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("constructing ChaCha20-Poly1305: %w", err)
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

// SealXChaCha20Poly1305 encrypts plaintext under key and a 24-byte nonce
// using XChaCha20-Poly1305. Used by the asymmetric envelope (C5) for both
// the per-recipient key wrap and the payload ciphertext.
func SealXChaCha20Poly1305(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("constructing XChaCha20-Poly1305: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("bad nonce size: got %d want %d", len(nonce), aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// OpenXChaCha20Poly1305 decrypts ciphertext+tag under key and nonce.
func OpenXChaCha20Poly1305(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("constructing XChaCha20-Poly1305: %w", err)
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}
