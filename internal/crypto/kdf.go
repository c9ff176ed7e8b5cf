// This file implements the passphrase-based key derivation used by the
// symmetric envelope (C4): Argon2id over a random salt, with the salt
// encoded as a canonical ASCII PHC string so the parameters travel with
// the ciphertext instead of being hard-coded on the decrypt side.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2 parameters: interactive-use parameters recommended for Argon2id,
// not the whole-disk-volume parameters a full-disk encryption tool would
// pick.
const (
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024 // KiB (64 MiB)
	Argon2Threads = 4
	Argon2KeySize = 32
	Argon2SaltLen = 16
)

// Argon2Params holds the parameters embedded in a PHC salt string.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	Salt    []byte
}

// RandomBytes generates n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("fatal crypto/rand error: %w", err)
	}
	return b, nil
}

// NewPHCSalt draws a fresh random salt and encodes it, together with the
// current package-default Argon2 parameters, as a PHC string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64-std-no-pad salt>
func NewPHCSalt() (string, error) {
	salt, err := RandomBytes(Argon2SaltLen)
	if err != nil {
		return "", err
	}
	return encodePHC(Argon2Params{
		Time:    Argon2Time,
		Memory:  Argon2Memory,
		Threads: Argon2Threads,
		Salt:    salt,
	}), nil
}

func encodePHC(p Argon2Params) string {
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s",
		p.Memory, p.Time, p.Threads, base64.RawStdEncoding.EncodeToString(p.Salt))
}

// ParsePHC decodes a canonical Argon2id PHC salt string back into its
// parameters and raw salt bytes.
func ParsePHC(s string) (Argon2Params, error) {
	fields := strings.Split(s, "$")
	// fields[0] is empty (string starts with '$'), fields[1]="argon2id",
	// fields[2]="v=19", fields[3]="m=...,t=...,p=...", fields[4]=salt
	if len(fields) != 5 || fields[1] != "argon2id" {
		return Argon2Params{}, fmt.Errorf("malformed PHC salt string")
	}
	var m, t, p int
	for _, kv := range strings.Split(fields[3], ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return Argon2Params{}, fmt.Errorf("malformed PHC parameter %q", kv)
		}
		val, err := strconv.Atoi(parts[1])
		if err != nil {
			return Argon2Params{}, fmt.Errorf("malformed PHC parameter %q: %w", kv, err)
		}
		switch parts[0] {
		case "m":
			m = val
		case "t":
			t = val
		case "p":
			p = val
		default:
			return Argon2Params{}, fmt.Errorf("unknown PHC parameter %q", parts[0])
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return Argon2Params{}, fmt.Errorf("malformed PHC salt: %w", err)
	}
	return Argon2Params{
		Time:    uint32(t),
		Memory:  uint32(m),
		Threads: uint8(p),
		Salt:    salt,
	}, nil
}

// DeriveKey derives a 32-byte Argon2id key from passphrase and the given
// parameters (typically decoded from a PHC salt string found in the
// ciphertext framing).
func DeriveKey(passphrase []byte, p Argon2Params) []byte {
	return argon2.IDKey(passphrase, p.Salt, p.Time, p.Memory, p.Threads, Argon2KeySize)
}
