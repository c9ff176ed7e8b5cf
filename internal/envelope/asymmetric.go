package envelope

import (
	"golang.org/x/crypto/curve25519"

	zcrypto "zimhide/internal/crypto"
	zerr "zimhide/internal/errors"
	"zimhide/internal/key"
)

const (
	ephPubSize     = 32
	keyNonceSize   = 24
	wrappedKeySize = 32 + 16 // data key + Poly1305 tag
	payloadNonceSize = 24
	dataKeySize    = 32

	recipientBlockSize = ephPubSize + keyNonceSize + wrappedKeySize
)

// EncryptAsymmetric implements C5's encryption path: a fresh 32-byte data
// key K is generated once and wrapped separately for each of 1..255
// recipients via an ephemeral X25519 key exchange, then the plaintext is
// sealed once under K. Recipient blocks appear in request order; any one
// recipient's private key recovers K and therefore the whole plaintext.
func EncryptAsymmetric(recipients []key.Public, plaintext []byte) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, zerr.NewValidationError("recipients", "at least one recipient required")
	}
	if len(recipients) > 255 {
		return nil, zerr.NewValidationError("recipients", "at most 255 recipients supported")
	}

	dataKey, err := zcrypto.RandomBytes(dataKeySize)
	if err != nil {
		return nil, err
	}
	cc := &zcrypto.CryptoContext{DataKey: dataKey}
	defer cc.Close()

	out := make([]byte, 0, 1+len(recipients)*recipientBlockSize+payloadNonceSize+len(plaintext)+16)
	out = append(out, byte(len(recipients)))

	for _, r := range recipients {
		block, err := wrapForRecipient(r, dataKey)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}

	payloadNonce, err := zcrypto.RandomBytes(payloadNonceSize)
	if err != nil {
		return nil, err
	}
	ct, err := zcrypto.SealXChaCha20Poly1305(dataKey, payloadNonce, plaintext)
	if err != nil {
		return nil, zerr.NewCryptoError("seal", err)
	}

	out = append(out, payloadNonce...)
	out = append(out, ct...)
	return out, nil
}

func wrapForRecipient(r key.Public, dataKey []byte) ([]byte, error) {
	var ephPriv [32]byte
	raw, err := zcrypto.RandomBytes(32)
	if err != nil {
		return nil, err
	}
	copy(ephPriv[:], raw)
	clampScalar(&ephPriv)
	cc := &zcrypto.CryptoContext{EphemeralPriv: ephPriv[:]}
	defer cc.Close()

	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, zerr.NewCryptoError("ecdh", err)
	}

	shared, err := curve25519.X25519(ephPriv[:], r.ECDH[:])
	if err != nil {
		return nil, zerr.NewCryptoError("ecdh", err)
	}
	cc.SharedSecret = shared

	kek := zcrypto.DeriveKEK(shared)
	cc.KEK = kek

	keyNonce, err := zcrypto.RandomBytes(keyNonceSize)
	if err != nil {
		return nil, err
	}

	wrapped, err := zcrypto.SealXChaCha20Poly1305(kek, keyNonce, dataKey)
	if err != nil {
		return nil, zerr.NewCryptoError("seal", err)
	}

	block := make([]byte, 0, recipientBlockSize)
	block = append(block, ephPub...)
	block = append(block, keyNonce...)
	block = append(block, wrapped...)
	return block, nil
}

// DecryptAsymmetric implements C5's decryption path: try each
// per-recipient block with the holder's private key; the first block
// whose wrapped key unseals successfully determines the data key used to
// decrypt the payload. If no block succeeds, returns ErrNoRecipientMatch.
func DecryptAsymmetric(priv *key.Private, framed []byte) ([]byte, error) {
	if len(framed) < 1 {
		return nil, zerr.ErrTruncated
	}
	n := int(framed[0])
	framed = framed[1:]
	if n == 0 {
		return nil, zerr.ErrTruncated
	}
	if len(framed) < n*recipientBlockSize {
		return nil, zerr.ErrTruncated
	}

	var dataKey []byte
	for i := 0; i < n; i++ {
		block := framed[i*recipientBlockSize : (i+1)*recipientBlockSize]
		ephPub := block[:ephPubSize]
		keyNonce := block[ephPubSize : ephPubSize+keyNonceSize]
		wrapped := block[ephPubSize+keyNonceSize : recipientBlockSize]

		shared, err := curve25519.X25519(priv.ECDH[:], ephPub)
		if err != nil {
			continue
		}
		kek := zcrypto.DeriveKEK(shared)
		unwrapped, err := zcrypto.OpenXChaCha20Poly1305(kek, keyNonce, wrapped)
		attempt := &zcrypto.CryptoContext{SharedSecret: shared, KEK: kek}
		attempt.Close()
		if err == nil {
			dataKey = unwrapped
			break
		}
	}
	if dataKey == nil {
		return nil, zerr.ErrNoRecipientMatch
	}
	cc := &zcrypto.CryptoContext{DataKey: dataKey}
	defer cc.Close()

	rest := framed[n*recipientBlockSize:]
	if len(rest) < payloadNonceSize {
		return nil, zerr.ErrTruncated
	}
	payloadNonce := rest[:payloadNonceSize]
	ct := rest[payloadNonceSize:]

	pt, err := zcrypto.OpenXChaCha20Poly1305(dataKey, payloadNonce, ct)
	if err != nil {
		return nil, zerr.ErrNoRecipientMatch
	}
	return pt, nil
}

func clampScalar(s *[32]byte) {
	s[0] &= 248
	s[31] &= 127
	s[31] |= 64
}
