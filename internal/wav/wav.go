// Package wav is the WAV adapter (C1): decode/encode PCM samples, and
// list/append raw RIFF chunks for the metadata stego codec.
//
// PCM decode/encode is grounded on github.com/go-audio/wav and
// github.com/go-audio/audio, in the usage pattern shown by
// ausocean-av/exp/flac/decode.go (IntBuffer + Encoder/Decoder pair over
// an io.ReadWriteSeeker). Raw chunk listing uses github.com/go-audio/riff;
// chunk append and the RIFF size fix-up are done with direct byte
// surgery (encoding/binary) since no pack library exposes an "append a
// chunk to an existing WAV file" operation generically — this is a
// genuine boundary operation belonging to the adapter itself.
package wav

import (
	"bytes"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	zerr "zimhide/internal/errors"
)

// Spec describes the immutable metadata of a carrier. Embedding must not
// change any of these fields.
type Spec struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// Samples holds a decoded carrier: its spec plus the interleaved sample
// stream. Samples are always materialized as int (go-audio's native
// buffer type) since bit depths other than 16 are valid for the metadata
// method; the Opus codec (C7), which needs int16 PCM, converts with As16.
type Samples struct {
	Spec Spec
	Data []int
}

// Open decodes a WAV file fully into memory: its spec and sample stream.
func Open(path string) (*Samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.NewFileError("open", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a complete WAV stream from r.
func Decode(r io.ReadSeeker) (*Samples, error) {
	d := wav.NewDecoder(r)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, zerr.NewCryptoError("wav-decode", err)
	}
	switch d.BitDepth {
	case 8, 16, 24, 32:
		// PCM integer depths, and 32-bit IEEE float both land on 32 here;
		// either is accepted by the adapter (§4.1). LSB rejects non-16-bit
		// separately in the stego codec.
	default:
		return nil, zerr.ErrUnsupportedSampleFormat
	}
	return &Samples{
		Spec: Spec{
			Channels:   int(d.NumChans),
			SampleRate: int(d.SampleRate),
			BitDepth:   int(d.BitDepth),
		},
		Data: buf.Data,
	}, nil
}

// Create writes samples to a new WAV file at path with the given spec.
func Create(path string, s Samples) error {
	f, err := os.Create(path)
	if err != nil {
		return zerr.NewFileError("create", path, err)
	}
	defer f.Close()
	if err := Encode(f, s); err != nil {
		return err
	}
	return nil
}

// Encode writes samples to w as a complete PCM WAV stream.
func Encode(w io.WriteSeeker, s Samples) error {
	const wavFormatPCM = 1
	enc := wav.NewEncoder(w, s.Spec.SampleRate, s.Spec.BitDepth, s.Spec.Channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: s.Spec.Channels, SampleRate: s.Spec.SampleRate},
		SourceBitDepth: s.Spec.BitDepth,
		Data:           s.Data,
	}
	if err := enc.Write(buf); err != nil {
		return zerr.NewCryptoError("wav-encode", err)
	}
	return enc.Close()
}

// As16 requires a 16-bit sample stream (C9's LSB codec only operates on
// 16-bit PCM) and converts the go-audio int samples to int16.
func (s *Samples) As16() ([]int16, error) {
	if s.Spec.BitDepth != 16 {
		return nil, zerr.ErrUnsupportedSampleFormat
	}
	out := make([]int16, len(s.Data))
	for i, v := range s.Data {
		out[i] = int16(v)
	}
	return out, nil
}

// Chunk is one raw RIFF chunk: its four-byte ASCII ID and payload bytes
// (without any padding byte).
type Chunk struct {
	ID   [4]byte
	Data []byte
}

// ListChunks returns every top-level chunk of a RIFF/WAVE file in order.
func ListChunks(r io.Reader) ([]Chunk, error) {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return nil, zerr.NewCryptoError("riff-parse", err)
	}

	var chunks []Chunk
	for {
		c, err := parser.NextChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, zerr.NewCryptoError("riff-parse", err)
		}
		data, err := io.ReadAll(c)
		if err != nil {
			return nil, zerr.NewCryptoError("riff-read", err)
		}
		var id [4]byte
		copy(id[:], c.ID[:])
		chunks = append(chunks, Chunk{ID: id, Data: data})
		if c.Size%2 == 1 {
			var pad [1]byte
			_, _ = io.ReadFull(parser, pad[:])
		}
	}
	return chunks, nil
}

// FindChunk returns the first chunk with the given four-byte ID.
func FindChunk(chunks []Chunk, id string) ([]byte, bool) {
	for _, c := range chunks {
		if string(c.ID[:]) == id {
			return c.Data, true
		}
	}
	return nil, false
}

// AppendChunk returns a new RIFF/WAVE byte string identical to src but
// with one extra chunk appended after the existing chunks, and the
// top-level RIFF size field fixed up. This is the operation behind the
// metadata stego codec's embed path.
func AppendChunk(src []byte, id string, data []byte) ([]byte, error) {
	if len(src) < 12 || string(src[0:4]) != "RIFF" || string(src[8:12]) != "WAVE" {
		return nil, zerr.NewValidationError("wav", "not a RIFF/WAVE file")
	}
	if len(id) != 4 {
		return nil, zerr.NewValidationError("chunk id", "must be 4 ASCII bytes")
	}

	out := make([]byte, len(src), len(src)+8+len(data)+1)
	copy(out, src)

	out = append(out, []byte(id)...)
	var sizeBuf [4]byte
	putUint32LE(sizeBuf[:], uint32(len(data)))
	out = append(out, sizeBuf[:]...)
	out = append(out, data...)
	if len(data)%2 == 1 {
		out = append(out, 0)
	}

	newRiffSize := uint32(len(out) - 8)
	putUint32LE(out[4:8], newRiffSize)
	return out, nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ReadAllChunks is a convenience wrapper for in-memory byte strings.
func ReadAllChunks(data []byte) ([]Chunk, error) {
	return ListChunks(bytes.NewReader(data))
}
