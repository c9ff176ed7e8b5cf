//go:build noopus

// Package opus implements the embedded-audio sub-codec (C7).
//
// This file is the `noopus`-tagged build: it has no libopus dependency.
// Encode stores and Decode returns the raw WAV file bytes unmodified, per
// §4.7 — "the envelope flag bits are unaffected (the consumer cannot
// distinguish from the envelope alone)". Encode and Decode run in the
// same build, so this is safe: a file embedded without Opus is only ever
// extracted without Opus too.
package opus

// SampleRate mirrors the Opus-enabled build's constant for callers that
// branch on it; the passthrough build ignores sample rate entirely.
const SampleRate = 48000

// Encode stores wavBytes verbatim as the payload's audio sub-stream.
func Encode(wavBytes []byte) ([]byte, error) {
	out := make([]byte, len(wavBytes))
	copy(out, wavBytes)
	return out, nil
}

// Decode returns the stored WAV bytes verbatim.
func Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
