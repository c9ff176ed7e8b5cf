// Package envelope implements the symmetric and asymmetric ciphertext
// framings (C4, C5) and the outer envelope header (C8).
package envelope

import (
	zcrypto "zimhide/internal/crypto"
	zerr "zimhide/internal/errors"
)

const (
	symNonceSize = 12
	symTagSize   = 16
)

// EncryptSymmetric implements C4's encryption path: derive an Argon2id
// key from passphrase under a fresh random PHC salt, then seal plaintext
// with ChaCha20-Poly1305 under a fresh random 12-byte nonce. Returns the
// framing of §3: salt_len(1) | salt | nonce(12) | ct+tag.
func EncryptSymmetric(passphrase []byte, plaintext []byte) ([]byte, error) {
	phc, err := zcrypto.NewPHCSalt()
	if err != nil {
		return nil, err
	}
	if len(phc) > 255 {
		return nil, zerr.NewValidationError("salt", "PHC salt string exceeds 255 bytes")
	}
	params, err := zcrypto.ParsePHC(phc)
	if err != nil {
		return nil, err
	}
	key := zcrypto.DeriveKey(passphrase, params)
	defer zcrypto.SecureZero(key)

	nonce, err := zcrypto.RandomBytes(symNonceSize)
	if err != nil {
		return nil, err
	}

	ct, err := zcrypto.SealChaCha20Poly1305(key, nonce, plaintext)
	if err != nil {
		return nil, zerr.NewCryptoError("seal", err)
	}

	out := make([]byte, 0, 1+len(phc)+symNonceSize+len(ct))
	out = append(out, byte(len(phc)))
	out = append(out, phc...)
	out = append(out, nonce...)
	out = append(out, ct...)
	return out, nil
}

// DecryptSymmetric implements C4's decryption path: parse salt_len, salt,
// nonce, and ciphertext; re-derive the key from passphrase and the parsed
// PHC salt; open the AEAD ciphertext. A tag mismatch or wrong passphrase
// both surface as ErrBadPassphrase.
func DecryptSymmetric(passphrase []byte, framed []byte) ([]byte, error) {
	if len(framed) < 1 {
		return nil, zerr.ErrTruncated
	}
	saltLen := int(framed[0])
	framed = framed[1:]
	if len(framed) < saltLen+symNonceSize {
		return nil, zerr.ErrTruncated
	}
	phc := string(framed[:saltLen])
	framed = framed[saltLen:]
	nonce := framed[:symNonceSize]
	ct := framed[symNonceSize:]
	if len(ct) < symTagSize {
		return nil, zerr.ErrTruncated
	}

	params, err := zcrypto.ParsePHC(phc)
	if err != nil {
		return nil, zerr.Wrap(zerr.ErrBadPassphrase, err.Error())
	}
	key := zcrypto.DeriveKey(passphrase, params)
	defer zcrypto.SecureZero(key)

	pt, err := zcrypto.OpenChaCha20Poly1305(key, nonce, ct)
	if err != nil {
		return nil, zerr.ErrBadPassphrase
	}
	return pt, nil
}
