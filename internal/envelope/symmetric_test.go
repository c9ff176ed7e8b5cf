package envelope

import (
	"bytes"
	"testing"

	zerr "zimhide/internal/errors"
)

func TestSymmetricRoundTrip(t *testing.T) {
	plaintext := []byte("secret payload bytes")
	framed, err := EncryptSymmetric([]byte("puzzle"), plaintext)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}

	got, err := DecryptSymmetric([]byte("puzzle"), framed)
	if err != nil {
		t.Fatalf("DecryptSymmetric: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch")
	}
}

func TestSymmetricWrongPassphraseFails(t *testing.T) {
	framed, err := EncryptSymmetric([]byte("puzzle"), []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := DecryptSymmetric([]byte("wrong"), framed); !zerr.Is(err, zerr.ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestSymmetricTamperedCiphertextFails(t *testing.T) {
	framed, err := EncryptSymmetric([]byte("puzzle"), []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	framed[len(framed)-1] ^= 0xFF
	if _, err := DecryptSymmetric([]byte("puzzle"), framed); !zerr.Is(err, zerr.ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}
