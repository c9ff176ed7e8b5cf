// Package payload implements the plaintext payload codec (C6): a
// length-prefixed (text, audio) byte string. Both fields are always
// present; a zero length signals the field is absent.
package payload

import (
	"encoding/binary"
	"unicode/utf8"

	zerr "zimhide/internal/errors"
)

const lengthFieldSize = 4

// Payload is the plaintext (text, audio) pair carried inside an envelope,
// before any encryption layer.
type Payload struct {
	Text  string
	Audio []byte
}

// Encode serializes p as text_len(4) | text | audio_len(4) | audio.
func Encode(p Payload) []byte {
	textBytes := []byte(p.Text)
	out := make([]byte, 0, lengthFieldSize+len(textBytes)+lengthFieldSize+len(p.Audio))

	var lenBuf [lengthFieldSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(textBytes)))
	out = append(out, lenBuf[:]...)
	out = append(out, textBytes...)

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p.Audio)))
	out = append(out, lenBuf[:]...)
	out = append(out, p.Audio...)

	return out
}

// Decode parses the layout written by Encode. It requires text_len bytes
// of valid UTF-8 (else ErrBadText) and at least audio_len bytes after the
// audio length field (else ErrTruncated). Bytes past audio_len are
// ignored.
func Decode(data []byte) (Payload, error) {
	if len(data) < lengthFieldSize {
		return Payload{}, zerr.ErrTruncated
	}
	textLen := binary.LittleEndian.Uint32(data[:lengthFieldSize])
	data = data[lengthFieldSize:]

	if uint64(len(data)) < uint64(textLen) {
		return Payload{}, zerr.ErrTruncated
	}
	textBytes := data[:textLen]
	if !utf8.Valid(textBytes) {
		return Payload{}, zerr.ErrBadText
	}
	data = data[textLen:]

	if len(data) < lengthFieldSize {
		return Payload{}, zerr.ErrTruncated
	}
	audioLen := binary.LittleEndian.Uint32(data[:lengthFieldSize])
	data = data[lengthFieldSize:]

	if uint64(len(data)) < uint64(audioLen) {
		return Payload{}, zerr.ErrTruncated
	}
	audio := data[:audioLen]

	return Payload{Text: string(textBytes), Audio: append([]byte(nil), audio...)}, nil
}
