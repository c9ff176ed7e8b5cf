package envelope

import (
	"bytes"
	"testing"

	zerr "zimhide/internal/errors"
	"zimhide/internal/sign"
)

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	h := Header{
		Flags:   FlagTextPresent,
		Method:  MethodLSB,
		Payload: []byte("hello"),
	}
	wire, err := Assemble(h)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := Disassemble(wire)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if got.Flags != h.Flags || got.Method != h.Method || !bytes.Equal(got.Payload, h.Payload) {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if len(got.Signature) != 0 {
		t.Fatalf("unexpected signature: %v", got.Signature)
	}
}

func TestAssembleDisassembleWithSignature(t *testing.T) {
	sig := bytes.Repeat([]byte{0x42}, sign.Size)
	h := Header{
		Flags:     FlagTextPresent | FlagSigned,
		Method:    MethodMetadata,
		Payload:   []byte("signed payload"),
		Signature: sig,
	}
	wire, err := Assemble(h)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := Disassemble(wire)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !bytes.Equal(got.Signature, sig) {
		t.Fatalf("signature mismatch")
	}
}

func TestDisassembleRejectsBadMagic(t *testing.T) {
	wire, _ := Assemble(Header{Flags: FlagTextPresent, Method: MethodLSB, Payload: []byte("x")})
	wire[0] = 'X'
	if _, err := Disassemble(wire); !zerr.Is(err, zerr.ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestDisassembleRejectsBadVersion(t *testing.T) {
	wire, _ := Assemble(Header{Flags: FlagTextPresent, Method: MethodLSB, Payload: []byte("x")})
	wire[4] = 2
	if _, err := Disassemble(wire); !zerr.Is(err, zerr.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDisassembleRejectsReservedBits(t *testing.T) {
	wire, _ := Assemble(Header{Flags: FlagTextPresent, Method: MethodLSB, Payload: []byte("x")})
	wire[5] |= 0x80
	if _, err := Disassemble(wire); !zerr.Is(err, zerr.ErrBadFlags) {
		t.Fatalf("expected ErrBadFlags, got %v", err)
	}
}

func TestAssembleRejectsBothCryptoBits(t *testing.T) {
	_, err := Assemble(Header{
		Flags:   FlagTextPresent | FlagSymmetric | FlagAsymmetric,
		Method:  MethodLSB,
		Payload: []byte("x"),
	})
	if !zerr.Is(err, zerr.ErrBadFlags) {
		t.Fatalf("expected ErrBadFlags, got %v", err)
	}
}

func TestAssembleRejectsNeitherTextNorAudio(t *testing.T) {
	_, err := Assemble(Header{Flags: 0, Method: MethodLSB, Payload: []byte("x")})
	if !zerr.Is(err, zerr.ErrBadFlags) {
		t.Fatalf("expected ErrBadFlags, got %v", err)
	}
}

func TestDisassembleRejectsReservedMethod(t *testing.T) {
	wire, _ := Assemble(Header{Flags: FlagTextPresent, Method: MethodLSB, Payload: []byte("x")})
	wire[6] = 2
	if _, err := Disassemble(wire); !zerr.Is(err, zerr.ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}
}
