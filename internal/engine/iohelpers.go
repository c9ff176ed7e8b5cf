package engine

import (
	"bytes"
	"io"
)

// bytesReader adapts a byte slice to io.ReadSeeker for wav.Decode.
func bytesReader(b []byte) io.ReadSeeker {
	return bytes.NewReader(b)
}

// memBuf is an in-memory io.WriteSeeker, grounded on the writeSeeker
// idiom used by the WAV encoder throughout this module: the encoder
// writes placeholder header sizes, writes all sample data, then seeks
// back to patch the header.
type memBuf struct {
	buf []byte
	pos int
}

func (w *memBuf) Write(p []byte) (int, error) {
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

func (w *memBuf) Seek(offset int64, whence int) (int64, error) {
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
		newPos = 0
	}
	w.pos = newPos
	return int64(newPos), nil
}
