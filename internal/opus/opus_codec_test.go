//go:build !noopus

package opus

import (
	"bytes"
	"io"
	"testing"

	"zimhide/internal/wav"
)

type testWriteSeeker struct {
	buf []byte
	pos int
}

func (w *testWriteSeeker) Write(p []byte) (int, error) {
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

func (w *testWriteSeeker) Seek(offset int64, whence int) (int64, error) {
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

func sineWAV(t *testing.T, channels, seconds int) []byte {
	t.Helper()
	n := SampleRate * seconds * channels
	data := make([]int, n)
	for i := range data {
		data[i] = (i % 200) - 100 // cheap non-silent waveform
	}
	ws := &testWriteSeeker{}
	err := wav.Encode(ws, wav.Samples{
		Spec: wav.Spec{Channels: channels, SampleRate: SampleRate, BitDepth: 16},
		Data: data,
	})
	if err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	return ws.buf
}

func TestEncodeDecodeRoundTripMono(t *testing.T) {
	src := sineWAV(t, 1, 1)
	encoded, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	samples, err := wav.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	if samples.Spec.Channels != 1 || samples.Spec.SampleRate != SampleRate {
		t.Fatalf("unexpected decoded spec: %+v", samples.Spec)
	}
	// Padded to a full 20ms frame boundary; length should be >= original.
	if len(samples.Data) < SampleRate {
		t.Fatalf("decoded sample count too short: %d", len(samples.Data))
	}
}

func TestEncodeDecodeRoundTripStereo(t *testing.T) {
	src := sineWAV(t, 2, 1)
	encoded, err := Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	samples, err := wav.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	if samples.Spec.Channels != 2 {
		t.Fatalf("expected stereo output, got %d channels", samples.Spec.Channels)
	}
}

func TestEncodeRejectsWrongSampleRate(t *testing.T) {
	ws := &testWriteSeeker{}
	err := wav.Encode(ws, wav.Samples{
		Spec: wav.Spec{Channels: 1, SampleRate: 44100, BitDepth: 16},
		Data: make([]int, 1000),
	})
	if err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	if _, err := Encode(ws.buf); err == nil {
		t.Fatal("expected an error for a non-48kHz carrier")
	}
}
