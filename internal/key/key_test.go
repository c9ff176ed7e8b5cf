package key

import (
	"bytes"
	"testing"

	zerr "zimhide/internal/errors"
)

func TestGenerateProducesDistinctHalves(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(priv.Sign.Seed()) != HalfSize {
		t.Fatalf("unexpected seed length: %d", len(priv.Sign.Seed()))
	}
	if len(priv.ECDH) != HalfSize {
		t.Fatalf("unexpected ECDH scalar length: %d", len(priv.ECDH))
	}
	if bytes.Equal(priv.Sign.Seed(), priv.ECDH[:]) {
		t.Fatal("signing seed and ECDH scalar must be drawn independently")
	}
}

func TestRoundTripPrivate(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	armored := priv.SerializePrivate()

	parsed, err := ParsePrivate(armored)
	if err != nil {
		t.Fatalf("ParsePrivate: %v", err)
	}
	if !bytes.Equal(priv.PrivateBytes(), parsed.PrivateBytes()) {
		t.Fatal("round-tripped private key bytes differ")
	}
	if priv.Public.Fingerprint() != parsed.Public.Fingerprint() {
		t.Fatal("round-tripped fingerprint differs")
	}
}

func TestRoundTripPublic(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	armored := priv.Public.SerializePublic()

	parsed, err := ParsePublic(armored)
	if err != nil {
		t.Fatalf("ParsePublic: %v", err)
	}
	if !bytes.Equal(priv.Public.PublicBytes(), parsed.PublicBytes()) {
		t.Fatal("round-tripped public key bytes differ")
	}
}

func TestParsePrivateRejectsBadArmor(t *testing.T) {
	_, err := ParsePrivate("not a key at all")
	if err == nil {
		t.Fatal("expected an error for malformed armor")
	}
}

func TestParsePublicRejectsWrongTag(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// A private key's armor carries the PRIVATE tag; parsing it as a
	// public key must fail with a role-specific error rather than
	// silently truncating or reinterpreting it.
	_, err = ParsePublic(priv.SerializePrivate())
	if !zerr.Is(err, zerr.ErrKeyRoleMismatch) {
		t.Fatalf("expected ErrKeyRoleMismatch, got %v", err)
	}
}

func TestParsePrivateRejectsPublicArmor(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, err = ParsePrivate(priv.Public.SerializePublic())
	if !zerr.Is(err, zerr.ErrKeyRoleMismatch) {
		t.Fatalf("expected ErrKeyRoleMismatch, got %v", err)
	}
}

func TestFingerprintLength(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	fp := priv.Public.Fingerprint()
	if len(fp) != 12 {
		t.Fatalf("expected 12 hex chars, got %d: %s", len(fp), fp)
	}
}
