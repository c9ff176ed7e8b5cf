package payload

import (
	"bytes"
	"testing"

	zerr "zimhide/internal/errors"
)

func TestRoundTripTextAndAudio(t *testing.T) {
	p := Payload{Text: "hello, world!", Audio: []byte{1, 2, 3, 4}}
	encoded := Encode(p)

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Text != p.Text {
		t.Fatalf("text mismatch: got %q want %q", decoded.Text, p.Text)
	}
	if !bytes.Equal(decoded.Audio, p.Audio) {
		t.Fatalf("audio mismatch")
	}
}

func TestTextOnly(t *testing.T) {
	p := Payload{Text: "just text"}
	decoded, err := Decode(Encode(p))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Text != "just text" || len(decoded.Audio) != 0 {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestAudioOnly(t *testing.T) {
	p := Payload{Audio: []byte{9, 9, 9}}
	decoded, err := Decode(Encode(p))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Text != "" || !bytes.Equal(decoded.Audio, p.Audio) {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	raw := Encode(Payload{Text: "placeholder"})
	// Corrupt the text bytes (offset 4, length given by the first 4 bytes)
	// with 0xFF, a byte that never occurs in valid UTF-8.
	raw[4] = 0xFF

	if _, err := Decode(raw); !zerr.Is(err, zerr.ErrBadText) {
		t.Fatalf("expected ErrBadText, got %v", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	if _, err := Decode([]byte{1, 0, 0, 0}); !zerr.Is(err, zerr.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
