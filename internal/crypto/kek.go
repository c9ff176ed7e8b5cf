package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/dchest/siphash"
)

// kekDomain is the domain separator mixed into the v1 KEK derivation.
const kekDomain = "zimhide-key-derivation"

// kekDomainV2 is reserved for the HKDF-SHA256-based migration path
// described in the design notes; it is not wired into any wire format
// yet, since no v2 envelope exists.
const kekDomainV2 = "zimhide-key-derivation-v2" //nolint:unused

// DeriveKEK reproduces the version-1 key-encryption-key construction: four
// invocations of SipHash-2-4, each fed the domain separator, a
// little-endian counter i in {0,1,2,3}, and the 32-byte ECDH shared
// secret, concatenating the 8-byte outputs into a 32-byte KEK.
//
// This is a known-weak construction (SipHash is not a cryptographic KDF)
// kept only for wire compatibility with existing version-1 envelopes. Do
// not use it for anything new; see the design notes for the HKDF-SHA256
// replacement planned for a version-2 envelope.
func DeriveKEK(sharedSecret []byte) []byte {
	k0, k1 := sipHashKeySchedule(sharedSecret)

	kek := make([]byte, 32)
	for i := 0; i < 4; i++ {
		var counter [8]byte
		binary.LittleEndian.PutUint64(counter[:], uint64(i))
		out := siphash.Hash(k0, k1, counter[:])
		binary.LittleEndian.PutUint64(kek[i*8:], out)
	}
	return kek
}

// sipHashKeySchedule derives SipHash's two 64-bit keys from the domain
// separator and shared secret: k0 and k1 are the first and second 8 bytes
// of SHA-256(domain || secret). This schedule is not specified further by
// the wire format beyond "a keyed hash fed the domain separator and the
// shared secret"; it must be applied identically on both the wrap and
// unwrap sides to interoperate, which this function guarantees by
// construction.
func sipHashKeySchedule(sharedSecret []byte) (k0, k1 uint64) {
	h := sha256.New()
	h.Write([]byte(kekDomain))
	h.Write(sharedSecret)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}
