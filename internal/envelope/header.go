package envelope

import (
	"encoding/binary"

	zerr "zimhide/internal/errors"
	"zimhide/internal/sign"
)

var magic = [4]byte{'Z', 'I', 'M', 'H'}

const version = 1

// Method identifies the carrier stego technique (the method byte that
// follows the flags byte).
type Method byte

const (
	MethodLSB      Method = 0
	MethodMetadata Method = 1
)

// Flag bits, per §3.
const (
	FlagTextPresent  = 1 << 0
	FlagAudioPresent = 1 << 1
	FlagSigned       = 1 << 2
	FlagSymmetric    = 1 << 3
	FlagAsymmetric   = 1 << 4
)

// Header is the assembled outer envelope (C8): magic, version, flags,
// method, and the framed payload (cleartext or ciphertext, depending on
// the crypto flags), plus an optional trailing detached signature.
type Header struct {
	Flags     byte
	Method    Method
	Payload   []byte
	Signature []byte
}

// Assemble serializes a Header to the wire format of §3:
// magic(4) | version(1) | flags(1) | method(1) | payload_len(4) | payload | signature[64]?
func Assemble(h Header) ([]byte, error) {
	if err := validateFlags(h.Flags); err != nil {
		return nil, err
	}
	if h.Method != MethodLSB && h.Method != MethodMetadata {
		return nil, zerr.ErrUnsupportedMethod
	}
	signed := h.Flags&FlagSigned != 0
	if signed && len(h.Signature) != sign.Size {
		return nil, zerr.NewValidationError("signature", "signed flag set but signature missing or wrong size")
	}
	if !signed && len(h.Signature) != 0 {
		return nil, zerr.NewValidationError("signature", "signature present but signed flag not set")
	}

	out := make([]byte, 0, 4+1+1+1+4+len(h.Payload)+len(h.Signature))
	out = append(out, magic[:]...)
	out = append(out, version)
	out = append(out, h.Flags)
	out = append(out, byte(h.Method))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(h.Payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, h.Payload...)
	out = append(out, h.Signature...)
	return out, nil
}

// Disassemble parses the wire format back into a Header, validating
// magic, version, flag invariants, and method.
func Disassemble(data []byte) (Header, error) {
	const fixedLen = 4 + 1 + 1 + 1 + 4
	if len(data) < fixedLen {
		return Header{}, zerr.ErrTruncated
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return Header{}, zerr.ErrBadMagic
	}
	if data[4] != version {
		return Header{}, zerr.ErrUnsupportedVersion
	}
	flags := data[5]
	if err := validateFlags(flags); err != nil {
		return Header{}, err
	}
	method := Method(data[6])
	if method != MethodLSB && method != MethodMetadata {
		return Header{}, zerr.ErrUnsupportedMethod
	}

	payloadLen := binary.LittleEndian.Uint32(data[7:11])
	rest := data[11:]
	if uint64(len(rest)) < uint64(payloadLen) {
		return Header{}, zerr.ErrTruncated
	}
	payload := rest[:payloadLen]
	rest = rest[payloadLen:]

	signed := flags&FlagSigned != 0
	if signed {
		if len(rest) != sign.Size {
			return Header{}, zerr.ErrTruncated
		}
		return Header{Flags: flags, Method: method, Payload: payload, Signature: rest}, nil
	}
	if len(rest) != 0 {
		return Header{}, zerr.NewValidationError("envelope", "trailing bytes after unsigned payload")
	}
	return Header{Flags: flags, Method: method, Payload: payload}, nil
}

// validateFlags checks the bit invariants of §3: bits 5-7 are reserved
// and must be zero, at most one of the symmetric/asymmetric crypto bits
// may be set (neither is valid for a cleartext envelope), and at least
// one of text/audio present must be set. The signed bit's corresponding
// requirement (a signature must actually be attached) is checked against
// the parsed signature length by the caller, not here.
func validateFlags(flags byte) error {
	if flags&0xE0 != 0 {
		return zerr.ErrBadFlags
	}
	cryptoBits := 0
	if flags&FlagSymmetric != 0 {
		cryptoBits++
	}
	if flags&FlagAsymmetric != 0 {
		cryptoBits++
	}
	if cryptoBits > 1 {
		return zerr.ErrBadFlags
	}
	if flags&(FlagTextPresent|FlagAudioPresent) == 0 {
		return zerr.ErrBadFlags
	}
	return nil
}
