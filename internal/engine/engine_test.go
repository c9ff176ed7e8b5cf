package engine

import (
	"bytes"
	"io"
	"testing"

	"zimhide/internal/envelope"
	zerr "zimhide/internal/errors"
	"zimhide/internal/key"
	"zimhide/internal/stego"
	"zimhide/internal/wav"
)

type memWriteSeeker struct {
	buf []byte
	pos int
}

func (w *memWriteSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

func (w *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		w.pos = int(offset)
	case io.SeekCurrent:
		w.pos += int(offset)
	case io.SeekEnd:
		w.pos = len(w.buf) + int(offset)
	}
	return int64(w.pos), nil
}

func silentCarrier(t *testing.T, channels, sampleRate, seconds int) []byte {
	t.Helper()
	n := channels * sampleRate * seconds
	ws := &memWriteSeeker{}
	err := wav.Encode(ws, wav.Samples{
		Spec: wav.Spec{Channels: channels, SampleRate: sampleRate, BitDepth: 16},
		Data: make([]int, n),
	})
	if err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	return ws.buf
}

// Scenario 1: plain text, defaults, LSB.
func TestEmbedExtractPlainText(t *testing.T) {
	carrier := silentCarrier(t, 2, 44100, 1)

	out, err := Embed(carrier, EmbedOptions{Text: "Hello, world!"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	result, err := Extract(out, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Text != "Hello, world!" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.Method != envelope.MethodLSB || result.Encryption != EncryptionNone || result.Signed {
		t.Fatalf("unexpected metadata: %+v", result)
	}

	summary, err := Inspect(out, ExtractOptions{})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if summary.Method != envelope.MethodLSB || !summary.HasText || summary.HasAudio || summary.Encryption != EncryptionNone || summary.Signed {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

// Scenario 2: symmetric passphrase, wrong passphrase rejected.
func TestEmbedExtractSymmetric(t *testing.T) {
	carrier := silentCarrier(t, 2, 44100, 1)

	out, err := Embed(carrier, EmbedOptions{
		Text:       "secret",
		Encryption: EncryptionSymmetric,
		Passphrase: []byte("puzzle"),
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	result, err := Extract(out, ExtractOptions{Passphrase: []byte("puzzle")})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Text != "secret" {
		t.Fatalf("unexpected text: %q", result.Text)
	}

	if _, err := Extract(out, ExtractOptions{Passphrase: []byte("wrong")}); !zerr.Is(err, zerr.ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

// Scenario 3: multi-recipient asymmetric, unrelated key rejected.
func TestEmbedExtractAsymmetricMultiRecipient(t *testing.T) {
	carrier := silentCarrier(t, 2, 44100, 1)
	alice, _ := key.Generate()
	bob, _ := key.Generate()
	eve, _ := key.Generate()

	out, err := Embed(carrier, EmbedOptions{
		Text:       "hi",
		Encryption: EncryptionAsymmetric,
		Recipients: []key.Public{alice.Public, bob.Public},
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	for _, recipient := range []*key.Private{alice, bob} {
		result, err := Extract(out, ExtractOptions{Priv: recipient})
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if result.Text != "hi" {
			t.Fatalf("unexpected text: %q", result.Text)
		}
	}

	if _, err := Extract(out, ExtractOptions{Priv: eve}); !zerr.Is(err, zerr.ErrNoRecipientMatch) {
		t.Fatalf("expected ErrNoRecipientMatch, got %v", err)
	}
}

// Scenario 4: signed envelope, tampering detected.
func TestEmbedExtractSignedDetectsTampering(t *testing.T) {
	carrier := silentCarrier(t, 2, 44100, 1)
	signer, _ := key.Generate()

	out, err := Embed(carrier, EmbedOptions{
		Text:     "verified",
		Method:   envelope.MethodMetadata,
		SignWith: signer,
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	result, err := Extract(out, ExtractOptions{VerifyWith: &signer.Public})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !result.Signed || !result.Verified {
		t.Fatalf("expected signed+verified result: %+v", result)
	}

	tampered := append([]byte(nil), out...)
	for i := len(tampered) - 1; i >= len(tampered)-4; i-- {
		tampered[i] ^= 0xFF
	}
	if _, err := Extract(tampered, ExtractOptions{VerifyWith: &signer.Public}); err == nil {
		t.Fatal("expected tampering to be detected")
	}
}

// Scenario 5: metadata method preserves PCM samples exactly.
func TestEmbedExtractMetadataPreservesSamples(t *testing.T) {
	carrier := silentCarrier(t, 1, 48000, 1)

	out, err := Embed(carrier, EmbedOptions{
		Text:   "data",
		Method: envelope.MethodMetadata,
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	before, err := wav.Decode(bytes.NewReader(carrier))
	if err != nil {
		t.Fatalf("wav.Decode before: %v", err)
	}
	after, err := wav.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("wav.Decode after: %v", err)
	}
	if len(before.Data) != len(after.Data) {
		t.Fatalf("sample count changed")
	}
	for i := range before.Data {
		if before.Data[i] != after.Data[i] {
			t.Fatalf("sample %d changed under metadata embedding", i)
		}
	}

	result, err := Extract(out, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Text != "data" || result.Method != envelope.MethodMetadata {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestEmbedRequiresTextOrAudio(t *testing.T) {
	carrier := silentCarrier(t, 1, 44100, 1)
	if _, err := Embed(carrier, EmbedOptions{}); !zerr.Is(err, zerr.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestEmbedRejectsMutuallyExclusiveCrypto(t *testing.T) {
	carrier := silentCarrier(t, 1, 44100, 1)
	recipient, _ := key.Generate()

	_, err := Embed(carrier, EmbedOptions{
		Text:       "x",
		Encryption: EncryptionSymmetric,
		Passphrase: []byte("pw"),
		Recipients: []key.Public{recipient.Public},
	})
	if !zerr.Is(err, zerr.ErrMutuallyExclusiveOptions) {
		t.Fatalf("expected ErrMutuallyExclusiveOptions, got %v", err)
	}
}

func TestEmbedCapacityBoundary(t *testing.T) {
	carrier := silentCarrier(t, 2, 8000, 1) // small carrier, default 1 bit/sample
	samples, err := wav.Decode(bytes.NewReader(carrier))
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	capacity := stego.Capacity(len(samples.Data), stego.DefaultBitsPerSample, stego.ChannelBoth, samples.Spec.Channels)

	// Capacity counts envelope bytes: the 11-byte header and the payload's
	// two 4-byte length fields surround the text.
	const overhead = 4 + 1 + 1 + 1 + 4 + 4 + 4

	exact := make([]byte, capacity-overhead)
	if _, err := Embed(carrier, EmbedOptions{Text: string(exact)}); err != nil {
		t.Fatalf("embedding exactly capacity_bytes should succeed: %v", err)
	}

	tooMuch := make([]byte, capacity-overhead+1)
	if _, err := Embed(carrier, EmbedOptions{Text: string(tooMuch)}); !zerr.Is(err, zerr.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}
