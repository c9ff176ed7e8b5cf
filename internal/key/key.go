// Package key implements the dual Ed25519+X25519 keypair used for
// detached signing and asymmetric envelope recipients (C2).
//
// Ed25519 and X25519 private halves are always generated together from
// independent randomness; this package never performs the common
// Ed25519-to-X25519 Montgomery-form conversion. A private key file
// concatenates the Ed25519 seed and the X25519 scalar; a public key file
// concatenates the Ed25519 verifying key and the X25519 public point.
package key

import (
	"bufio"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/curve25519"

	zcrypto "zimhide/internal/crypto"
	zerr "zimhide/internal/errors"
)

const (
	// HalfSize is the size in bytes of each half of a keypair file.
	HalfSize = 32
	// FileSize is the total size of a private or public key file's raw bytes.
	FileSize = HalfSize * 2

	armorLineWidth = 64
)

// Public holds the two public halves of a keypair: the Ed25519 verifying
// key and the X25519 public point.
type Public struct {
	Sign ed25519.PublicKey // 32 bytes
	ECDH [32]byte
}

// Private holds the two private halves of a keypair: the Ed25519 seed
// (from which the private key and verifying key are derived) and the
// clamped X25519 scalar.
type Private struct {
	Sign   ed25519.PrivateKey // 64 bytes (seed||pub), derived from a 32-byte seed
	ECDH   [32]byte
	Public Public
}

// Generate draws fresh, independent randomness for both halves of a new
// keypair and returns the private keypair (which contains the public
// halves too).
func Generate() (*Private, error) {
	seed, err := zcrypto.RandomBytes(HalfSize)
	if err != nil {
		return nil, zerr.NewCryptoError("rand", err)
	}
	signPriv := ed25519.NewKeyFromSeed(seed)
	signPub := signPriv.Public().(ed25519.PublicKey)

	var scalar [32]byte
	raw, err := zcrypto.RandomBytes(HalfSize)
	if err != nil {
		return nil, zerr.NewCryptoError("rand", err)
	}
	copy(scalar[:], raw)
	clamp(&scalar)

	pub, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
	if err != nil {
		return nil, zerr.NewCryptoError("ecdh", err)
	}

	var ecdhPub [32]byte
	copy(ecdhPub[:], pub)

	pubHalves := Public{Sign: signPub, ECDH: ecdhPub}
	return &Private{Sign: signPriv, ECDH: scalar, Public: pubHalves}, nil
}

// clamp applies the RFC 7748 section 5 clamping to an X25519 scalar.
func clamp(s *[32]byte) {
	s[0] &= 248
	s[31] &= 127
	s[31] |= 64
}

// Fingerprint returns 12 lowercase hex characters identifying a public
// key: the first 6 bytes of the Ed25519 verifying key.
func (p Public) Fingerprint() string {
	return fmt.Sprintf("%012x", []byte(p.Sign[:6]))
}

// PrivateBytes returns the raw 64-byte private key file contents: the
// Ed25519 seed followed by the X25519 scalar.
func (pr *Private) PrivateBytes() []byte {
	out := make([]byte, FileSize)
	copy(out[:HalfSize], pr.Sign.Seed())
	copy(out[HalfSize:], pr.ECDH[:])
	return out
}

// PublicBytes returns the raw 64-byte public key file contents: the
// Ed25519 verifying key followed by the X25519 public point.
func (p Public) PublicBytes() []byte {
	out := make([]byte, FileSize)
	copy(out[:HalfSize], p.Sign)
	copy(out[HalfSize:], p.ECDH[:])
	return out
}

// SerializePrivate armors a private key in the ZIMHIDE PEM-like block.
func (pr *Private) SerializePrivate() string {
	return armor("PRIVATE", pr.PrivateBytes())
}

// SerializePublic armors a public key in the ZIMHIDE PEM-like block.
func (p Public) SerializePublic() string {
	return armor("PUBLIC", p.PublicBytes())
}

func armor(kind string, raw []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-----BEGIN ZIMHIDE %s KEY-----\n", kind)
	encoded := base64.StdEncoding.EncodeToString(raw)
	for i := 0; i < len(encoded); i += armorLineWidth {
		end := min(i+armorLineWidth, len(encoded))
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "-----END ZIMHIDE %s KEY-----\n", kind)
	return b.String()
}

// ParsePrivate strips PEM armor and decodes a private key file.
func ParsePrivate(text string) (*Private, error) {
	raw, err := parseArmor(text, "PRIVATE")
	if err != nil {
		return nil, err
	}
	seed := raw[:HalfSize]
	signPriv := ed25519.NewKeyFromSeed(seed)
	signPub := signPriv.Public().(ed25519.PublicKey)

	var scalar [32]byte
	copy(scalar[:], raw[HalfSize:])

	pub, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
	if err != nil {
		return nil, zerr.NewCryptoError("ecdh", err)
	}
	var ecdhPub [32]byte
	copy(ecdhPub[:], pub)

	return &Private{
		Sign: signPriv,
		ECDH: scalar,
		Public: Public{
			Sign: signPub,
			ECDH: ecdhPub,
		},
	}, nil
}

// ParsePublic strips PEM armor and decodes a public key file.
func ParsePublic(text string) (*Public, error) {
	raw, err := parseArmor(text, "PUBLIC")
	if err != nil {
		return nil, err
	}
	pub := &Public{Sign: append(ed25519.PublicKey(nil), raw[:HalfSize]...)}
	copy(pub.ECDH[:], raw[HalfSize:])
	return pub, nil
}

// parseArmor is lenient about trailing whitespace and line endings but
// strict about the begin/end tags, per the key material component's
// contract.
func parseArmor(text, kind string) ([]byte, error) {
	otherKind := "PUBLIC"
	if kind == "PUBLIC" {
		otherKind = "PRIVATE"
	}
	beginTag := fmt.Sprintf("-----BEGIN ZIMHIDE %s KEY-----", kind)
	endTag := fmt.Sprintf("-----END ZIMHIDE %s KEY-----", kind)
	otherBeginTag := fmt.Sprintf("-----BEGIN ZIMHIDE %s KEY-----", otherKind)

	scanner := bufio.NewScanner(strings.NewReader(text))
	var body strings.Builder
	sawBegin, sawEnd, sawOtherBegin := false, false, false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == beginTag:
			sawBegin = true
		case trimmed == endTag:
			sawEnd = true
		case trimmed == otherBeginTag:
			sawOtherBegin = true
		case sawBegin && !sawEnd:
			body.WriteString(trimmed)
		}
	}
	if !sawBegin || !sawEnd {
		if sawOtherBegin {
			return nil, zerr.ErrKeyRoleMismatch
		}
		return nil, zerr.ErrBadKeyEncoding
	}

	raw, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return nil, zerr.Wrap(zerr.ErrBadKeyEncoding, err.Error())
	}
	if len(raw) != FileSize {
		return nil, zerr.ErrBadKeyEncoding
	}
	return raw, nil
}
