//go:build !noopus

// Package opus implements the embedded-audio sub-codec (C7): Opus-framed
// 16-bit PCM at 48 kHz, 1 or 2 channels, in fixed 20 ms (960-sample)
// frames.
//
// The exported Encode/Decode pair operates at the WAV-file-bytes level so
// the orchestrator (C11) has one call shape regardless of whether Opus
// support was compiled in. This file is the default build: it depends on
// libopus via gopkg.in/hraban/opus.v2. Builds tagged `noopus` get the
// passthrough fallback in opus_passthrough.go instead, which stores and
// returns the raw WAV bytes unmodified.
package opus

import (
	"bytes"
	"encoding/binary"
	"io"

	"gopkg.in/hraban/opus.v2"

	zerr "zimhide/internal/errors"
	"zimhide/internal/util"
	"zimhide/internal/wav"
)

// packetPool supplies the scratch buffers each Opus packet is encoded
// into; 4000 bytes comfortably exceeds the worst-case Opus packet size
// at the bitrates this codec uses.
var packetPool = util.NewBufferPool(4000)

const (
	// SampleRate is the only sample rate the embedded-audio sub-stream supports.
	SampleRate = 48000
	// FrameSamples is the number of samples per channel in one 20ms frame.
	FrameSamples = 960

	headerSize    = 4 + 2 + 2 // sample_rate + channels + frame_count
	frameLenField = 2

	bitrateMono   = 64000
	bitrateStereo = 96000
)

// Encode decodes wavBytes to PCM, resamples are not performed (the
// embedded clip must already be 48 kHz mono or stereo 16-bit), and
// compresses it into the framed Opus sub-stream of §3. The last partial
// 960-sample block is zero-padded before encoding.
func Encode(wavBytes []byte) ([]byte, error) {
	samples, err := wav.Decode(bytes.NewReader(wavBytes))
	if err != nil {
		return nil, err
	}
	if samples.Spec.SampleRate != SampleRate {
		return nil, zerr.ErrUnsupportedSampleFormat
	}
	pcm, err := samples.As16()
	if err != nil {
		return nil, err
	}
	return encodeFrames(pcm, samples.Spec.Channels)
}

// Decode parses the framed Opus sub-stream, decompresses it back to PCM,
// and wraps the result in a fresh 16-bit WAV container.
func Decode(data []byte) ([]byte, error) {
	pcm, channels, err := decodeFrames(data)
	if err != nil {
		return nil, err
	}
	out := samplesToInts(pcm)
	ws := &memWriteSeeker{}
	err = wav.Encode(ws, wav.Samples{
		Spec: wav.Spec{Channels: channels, SampleRate: SampleRate, BitDepth: 16},
		Data: out,
	})
	if err != nil {
		return nil, err
	}
	return ws.buf, nil
}

func samplesToInts(pcm []int16) []int {
	out := make([]int, len(pcm))
	for i, v := range pcm {
		out[i] = int(v)
	}
	return out
}

// encodeFrames implements §4.7's sample-level algorithm directly: split
// into 960-sample (per channel) blocks, pad the last block, encode each
// to a variable-length Opus packet, and frame the result.
func encodeFrames(samples []int16, channels int) ([]byte, error) {
	if channels != 1 && channels != 2 {
		return nil, zerr.ErrUnsupportedSampleFormat
	}

	enc, err := opus.NewEncoder(SampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, zerr.NewCryptoError("opus-encoder", err)
	}
	bitrate := bitrateMono
	if channels == 2 {
		bitrate = bitrateStereo
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, zerr.NewCryptoError("opus-bitrate", err)
	}

	blockSize := FrameSamples * channels
	frames := make([][]byte, 0, (len(samples)+blockSize-1)/blockSize)

	for off := 0; off < len(samples); off += blockSize {
		end := off + blockSize
		var block []int16
		if end <= len(samples) {
			block = samples[off:end]
		} else {
			block = make([]int16, blockSize)
			copy(block, samples[off:])
		}

		buf := packetPool.Get()
		n, err := enc.Encode(block, buf)
		if err != nil {
			return nil, zerr.NewCryptoError("opus-encode", err)
		}
		packet := make([]byte, n)
		copy(packet, buf[:n])
		packetPool.Put(buf)
		frames = append(frames, packet)
	}

	out := make([]byte, 0, headerSize+len(frames)*frameLenField)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], SampleRate)
	out = append(out, u32[:]...)

	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], uint16(channels))
	out = append(out, u16[:]...)

	binary.LittleEndian.PutUint16(u16[:], uint16(len(frames)))
	out = append(out, u16[:]...)

	for _, f := range frames {
		binary.LittleEndian.PutUint16(u16[:], uint16(len(f)))
		out = append(out, u16[:]...)
		out = append(out, f...)
	}
	return out, nil
}

// decodeFrames is the inverse of encodeFrames.
func decodeFrames(data []byte) (samples []int16, channels int, err error) {
	if len(data) < headerSize {
		return nil, 0, zerr.ErrTruncated
	}
	sampleRate := binary.LittleEndian.Uint32(data[0:4])
	ch := binary.LittleEndian.Uint16(data[4:6])
	frameCount := binary.LittleEndian.Uint16(data[6:8])
	data = data[headerSize:]

	if sampleRate != SampleRate {
		return nil, 0, zerr.ErrUnsupportedSampleFormat
	}
	if ch != 1 && ch != 2 {
		return nil, 0, zerr.ErrUnsupportedSampleFormat
	}
	channels = int(ch)

	dec, derr := opus.NewDecoder(SampleRate, channels)
	if derr != nil {
		return nil, 0, zerr.NewCryptoError("opus-decoder", derr)
	}

	out := make([]int16, 0, int(frameCount)*FrameSamples*channels)
	pcm := make([]int16, FrameSamples*channels)

	for i := 0; i < int(frameCount); i++ {
		if len(data) < frameLenField {
			return nil, 0, zerr.ErrTruncated
		}
		frameLen := binary.LittleEndian.Uint16(data[:frameLenField])
		data = data[frameLenField:]
		if uint64(len(data)) < uint64(frameLen) {
			return nil, 0, zerr.ErrTruncated
		}
		packet := data[:frameLen]
		data = data[frameLen:]

		n, derr := dec.Decode(packet, pcm)
		if derr != nil {
			return nil, 0, zerr.NewCryptoError("opus-decode", derr)
		}
		out = append(out, pcm[:n*channels]...)
	}

	return out, channels, nil
}

// memWriteSeeker is an in-memory io.WriteSeeker, grounded on the
// writeSeeker idiom in ausocean-av/exp/flac/decode.go: the wav.Encoder
// writes placeholder header sizes, writes all sample data, then seeks
// back to patch the header, which a plain bytes.Buffer cannot support.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (w *memWriteSeeker) Write(p []byte) (int, error) {
	minLen := w.pos + len(p)
	if minLen > len(w.buf) {
		grown := make([]byte, minLen)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

func (w *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case io.SeekStart:
		newPos = int(offset)
	case io.SeekCurrent:
		newPos = w.pos + int(offset)
	case io.SeekEnd:
		newPos = len(w.buf) + int(offset)
	}
	if newPos < 0 {
		return 0, zerr.NewValidationError("seek", "negative result position")
	}
	w.pos = newPos
	return int64(newPos), nil
}
