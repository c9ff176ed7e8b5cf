package stego

import (
	zerr "zimhide/internal/errors"
	"zimhide/internal/wav"
)

// metadataChunkID is the custom RIFF chunk tag used to carry an envelope
// inline in the WAV container, per §4.10.
const metadataChunkID = "zimH"

// EmbedMetadata returns a copy of src with envelope appended as a zimH
// chunk, fixing up the top-level RIFF size.
func EmbedMetadata(src []byte, envelope []byte) ([]byte, error) {
	return wav.AppendChunk(src, metadataChunkID, envelope)
}

// ExtractMetadata scans src for a zimH chunk and returns its contents.
// If none exists, returns ErrNotFound so the orchestrator can fall back
// to LSB extraction.
func ExtractMetadata(src []byte) ([]byte, error) {
	chunks, err := wav.ReadAllChunks(src)
	if err != nil {
		return nil, err
	}
	data, ok := wav.FindChunk(chunks, metadataChunkID)
	if !ok {
		return nil, zerr.ErrNotFound
	}
	return data, nil
}
